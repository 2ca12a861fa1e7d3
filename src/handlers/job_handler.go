package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"wealth-server/src/jobs"
	"wealth-server/src/util"
)

const maxJobBody = 1 << 20

// readSignedJobBody reads the request body and checks its X-Job-Signature.
func readSignedJobBody(w http.ResponseWriter, r *http.Request, key []byte, now func() time.Time) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJobBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	if err := util.VerifyJobRequest(r.Header.Get(util.JobSignatureHeader), key, body, now()); err != nil {
		log.Printf("WARN: Rejected job request from %s: %v", r.RemoteAddr, err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return body, true
}

// ListJobs describes the registered jobs and their triggers.
func ListJobs(registry *jobs.Registry, key []byte, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := readSignedJobBody(w, r, key, now); !ok {
			return
		}
		writeData(w, http.StatusOK, registry.List())
	}
}

// AnnounceJobs lets the scheduler re-read the registrations after a deploy.
func AnnounceJobs(registry *jobs.Registry, key []byte, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := readSignedJobBody(w, r, key, now); !ok {
			return
		}
		list := registry.List()
		log.Printf("INFO: Announced %d jobs", len(list))
		writeData(w, http.StatusOK, map[string]any{"registered": len(list), "jobs": list})
	}
}

type jobRequest struct {
	Job   string     `json:"job"`
	Event jobs.Event `json:"event"`
}

// InvokeJob runs a named job, or every job subscribed to the event when no job is named.
func InvokeJob(registry *jobs.Registry, key []byte, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readSignedJobBody(w, r, key, now)
		if !ok {
			return
		}

		var req jobRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		if req.Job == "" {
			if req.Event.Name == "" {
				writeError(w, http.StatusBadRequest, "job or event name is required")
				return
			}
			results, err := registry.Dispatch(r.Context(), req.Event)
			if err != nil {
				log.Printf("ERROR: Event %s failed: %v", req.Event.Name, err)
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeData(w, http.StatusOK, results)
			return
		}

		result, err := registry.Invoke(r.Context(), req.Job, req.Event)
		if errors.Is(err, jobs.ErrUnknownJob) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeData(w, http.StatusOK, result)
	}
}
