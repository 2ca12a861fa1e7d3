package ai

import "context"

type fakeModel struct {
	text   string
	err    error
	prompt string
	images []Image
}

func (f *fakeModel) Generate(_ context.Context, prompt string, images ...Image) (string, error) {
	f.prompt = prompt
	f.images = images
	return f.text, f.err
}
