// Package mocks provides ghttp handlers that emulate the Docker Engine API endpoints used by the
// container runtime.
package mocks

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	dockerContainer "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
)

// FoundStatus selects whether a handler answers as if the container exists.
type FoundStatus bool

// FoundStatus values.
const (
	Found   FoundStatus = true
	Missing FoundStatus = false
)

// CreateRequest is the decoded body of a container create call.
type CreateRequest struct {
	dockerContainer.Config

	HostConfig *dockerContainer.HostConfig
}

var noContentStatusResponse = ghttp.RespondWith(http.StatusNoContent, nil)

// containerNotFoundResponse answers like the daemon does for an unknown container.
func containerNotFoundResponse(containerID string) http.HandlerFunc {
	return ghttp.RespondWithJSONEncoded(
		http.StatusNotFound,
		map[string]string{"message": "No such container: " + containerID},
	)
}

// CreateContainerHandler answers a create call with the given ID and stores the decoded request in
// captured when it is non-nil.
func CreateContainerHandler(containerID string, name string, captured *CreateRequest) http.HandlerFunc {
	handlers := []http.HandlerFunc{
		ghttp.VerifyRequest("POST", gomega.HaveSuffix("/containers/create")),
	}

	if name != "" {
		handlers = append(handlers, ghttp.VerifyFormKV("name", name))
	}

	handlers = append(handlers,
		func(_ http.ResponseWriter, r *http.Request) {
			if captured == nil {
				return
			}

			gomega.Expect(json.NewDecoder(r.Body).Decode(captured)).To(gomega.Succeed())
		},
		ghttp.RespondWithJSONEncoded(http.StatusCreated, dockerContainer.CreateResponse{
			ID:       containerID,
			Warnings: []string{},
		}),
	)

	return ghttp.CombineHandlers(handlers...)
}

// CreateContainerFailureHandler answers a create call with an error status.
func CreateContainerFailureHandler(status int, message string) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("POST", gomega.HaveSuffix("/containers/create")),
		ghttp.RespondWithJSONEncoded(status, map[string]string{"message": message}),
	)
}

// StartContainerHandler answers a start call.
func StartContainerHandler(containerID string) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("POST", gomega.HaveSuffix("/containers/%s/start", containerID)),
		noContentStatusResponse,
	)
}

// StartContainerFailureHandler answers a start call with a server error.
func StartContainerFailureHandler(containerID string, message string) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("POST", gomega.HaveSuffix("/containers/%s/start", containerID)),
		ghttp.RespondWithJSONEncoded(http.StatusInternalServerError, map[string]string{"message": message}),
	)
}

// WaitContainerHandler answers a wait call with the given exit status.
func WaitContainerHandler(containerID string, exitCode int64) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("POST", gomega.HaveSuffix("/containers/%s/wait", containerID)),
		ghttp.RespondWithJSONEncoded(http.StatusOK, dockerContainer.WaitResponse{StatusCode: exitCode}),
	)
}

// LogsHandler answers a logs call with multiplexed stdout and stderr frames.
func LogsHandler(containerID string, stdout, stderr string) http.HandlerFunc {
	var body bytes.Buffer

	if stdout != "" {
		_, err := stdcopy.NewStdWriter(&body, stdcopy.Stdout).Write([]byte(stdout))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	}

	if stderr != "" {
		_, err := stdcopy.NewStdWriter(&body, stdcopy.Stderr).Write([]byte(stderr))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	}

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("GET", gomega.HaveSuffix("/containers/%s/logs", containerID)),
		ghttp.RespondWith(http.StatusOK, body.Bytes(), http.Header{
			"Content-Type": []string{"application/vnd.docker.multiplexed-stream"},
		}),
	)
}

// RemoveContainerHandler answers a remove call.
func RemoveContainerHandler(containerID string, found FoundStatus) http.HandlerFunc {
	responseHandler := noContentStatusResponse
	if !found {
		responseHandler = containerNotFoundResponse(containerID)
	}

	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("DELETE", gomega.HaveSuffix("/containers/%s", containerID)),
		responseHandler,
	)
}

// CommitHandler answers a commit call for the given container and tag with a new image ID.
func CommitHandler(containerName, tag, comment, imageID string) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("POST", gomega.HaveSuffix("/commit")),
		ghttp.VerifyFormKV("container", containerName),
		ghttp.VerifyFormKV("tag", tag),
		ghttp.VerifyFormKV("comment", comment),
		ghttp.RespondWithJSONEncoded(http.StatusCreated, dockerContainer.CommitResponse{ID: imageID}),
	)
}

// CommitFailureHandler answers a commit call with a server error.
func CommitFailureHandler(message string) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest("POST", gomega.HaveSuffix("/commit")),
		ghttp.RespondWithJSONEncoded(http.StatusInternalServerError, map[string]string{"message": message}),
	)
}
