package container_test

import (
	"context"
	"net/http"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	cerrdefs "github.com/containerd/errdefs"
	dockerContainerType "github.com/docker/docker/api/types/container"
	dockerClient "github.com/docker/docker/client"

	"github.com/nicholas-fedor/container-check/pkg/container"
	"github.com/nicholas-fedor/container-check/pkg/container/mocks"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

var _ = ginkgo.Describe("the Docker API runtime", func() {
	const containerID = "0123456789abcdef0123456789abcdef"

	var docker *dockerClient.Client
	var mockServer *ghttp.Server
	var runtime *container.Client

	ginkgo.BeforeEach(func() {
		mockServer = ghttp.NewServer()
		docker, _ = dockerClient.NewClientWithOpts(
			dockerClient.WithHost(mockServer.URL()),
			dockerClient.WithHTTPClient(mockServer.HTTPTestServer.Client()))
		runtime = container.NewClientWithAPI(docker)
	})

	ginkgo.AfterEach(func() {
		mockServer.Close()
	})

	ginkgo.It("should identify itself", func() {
		gomega.Expect(runtime.Name()).To(gomega.Equal("docker-api"))
		gomega.Expect(runtime.Version()).ToNot(gomega.BeEmpty())
	})

	ginkgo.When("running an auto-remove container", func() {
		ginkgo.It("should capture output before removing the container", func() {
			var captured mocks.CreateRequest

			mockServer.AppendHandlers(
				mocks.CreateContainerHandler(containerID, "", &captured),
				mocks.StartContainerHandler(containerID),
				mocks.WaitContainerHandler(containerID, 0),
				mocks.LogsHandler(containerID, "bash-4.2.46-34.el7.x86_64\nglibc-2.17-317.el7.x86_64\n", ""),
				mocks.RemoveContainerHandler(containerID, mocks.Found),
			)

			result, err := runtime.CreateAndRun(context.Background(), types.RunSpec{
				Image:      "centos:7",
				Command:    []string{"rpm", "-qa"},
				AutoRemove: true,
				User:       "root",
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.ExitCode).To(gomega.Equal(0))
			gomega.Expect(result.Stdout).To(gomega.Equal("bash-4.2.46-34.el7.x86_64\nglibc-2.17-317.el7.x86_64\n"))
			gomega.Expect(result.Stderr).To(gomega.BeEmpty())
			gomega.Expect(mockServer.ReceivedRequests()).To(gomega.HaveLen(5))

			gomega.Expect(captured.Image).To(gomega.Equal("centos:7"))
			gomega.Expect([]string(captured.Cmd)).To(gomega.Equal([]string{"rpm", "-qa"}))
			gomega.Expect(captured.User).To(gomega.Equal("root"))
		})

		ginkgo.It("should report a non-zero exit with its stderr", func() {
			mockServer.AppendHandlers(
				mocks.CreateContainerHandler(containerID, "", nil),
				mocks.StartContainerHandler(containerID),
				mocks.WaitContainerHandler(containerID, 127),
				mocks.LogsHandler(containerID, "", "rpm: command not found\n"),
				mocks.RemoveContainerHandler(containerID, mocks.Found),
			)

			result, err := runtime.CreateAndRun(context.Background(), types.RunSpec{
				Image:      "alpine:3.20",
				Command:    []string{"rpm", "-qa"},
				AutoRemove: true,
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.ExitCode).To(gomega.Equal(127))
			gomega.Expect(result.Stderr).To(gomega.Equal("rpm: command not found\n"))
		})

		ginkgo.It("should still remove the container when it fails to start", func() {
			mockServer.AppendHandlers(
				mocks.CreateContainerHandler(containerID, "", nil),
				mocks.StartContainerFailureHandler(containerID, "exec format error"),
				mocks.RemoveContainerHandler(containerID, mocks.Found),
			)

			result, err := runtime.CreateAndRun(context.Background(), types.RunSpec{
				Image:      "centos:7",
				Command:    []string{"rpm", "-qa"},
				AutoRemove: true,
			})

			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("failed to start container")))
			gomega.Expect(result.ExitCode).To(gomega.Equal(-1))
			gomega.Expect(mockServer.ReceivedRequests()).To(gomega.HaveLen(3))
		})
	})

	ginkgo.When("running a named transaction container", func() {
		ginkgo.It("should pass name, network, user and mounts and keep the container", func() {
			var captured mocks.CreateRequest

			mockServer.AppendHandlers(
				mocks.CreateContainerHandler(containerID, "yum-update-1", &captured),
				mocks.StartContainerHandler(containerID),
				mocks.WaitContainerHandler(containerID, 0),
				mocks.LogsHandler(containerID, "Complete!\n", ""),
			)

			result, err := runtime.CreateAndRun(context.Background(), types.RunSpec{
				Image:       "centos:7",
				Command:     []string{"yum", "-y", "update"},
				Name:        "yum-update-1",
				NetworkMode: "host",
				User:        "root",
				Mounts:      []types.Mount{{Source: "/srv/repos", Target: "/etc/yum.repos.d"}},
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Stdout).To(gomega.Equal("Complete!\n"))
			gomega.Expect(mockServer.ReceivedRequests()).To(gomega.HaveLen(4))
			gomega.Expect(captured.HostConfig).ToNot(gomega.BeNil())
			gomega.Expect(captured.HostConfig.NetworkMode).To(gomega.Equal(dockerContainerType.NetworkMode("host")))
			gomega.Expect(captured.HostConfig.Binds).To(gomega.Equal([]string{"/srv/repos:/etc/yum.repos.d"}))
		})
	})

	ginkgo.When("the run spec has no command", func() {
		ginkgo.It("should fail without calling the daemon", func() {
			_, err := runtime.CreateAndRun(context.Background(), types.RunSpec{Image: "centos:7"})
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("no command specified")))
			gomega.Expect(mockServer.ReceivedRequests()).To(gomega.BeEmpty())
		})
	})

	ginkgo.When("creating the container fails", func() {
		ginkgo.It("should return the create error", func() {
			mockServer.AppendHandlers(
				mocks.CreateContainerFailureHandler(http.StatusNotFound, "No such image: centos:9"),
			)

			_, err := runtime.CreateAndRun(context.Background(), types.RunSpec{
				Image:      "centos:9",
				Command:    []string{"rpm", "-qa"},
				AutoRemove: true,
			})
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("failed to create container")))
		})
	})

	ginkgo.Describe("Remove", func() {
		ginkgo.It("should remove an existing container", func() {
			mockServer.AppendHandlers(mocks.RemoveContainerHandler("yum-update-1", mocks.Found))
			gomega.Expect(runtime.Remove(context.Background(), "yum-update-1")).To(gomega.Succeed())
		})

		ginkgo.It("should classify a missing container as not found", func() {
			mockServer.AppendHandlers(mocks.RemoveContainerHandler("yum-update-2", mocks.Missing))

			err := runtime.Remove(context.Background(), "yum-update-2")
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(cerrdefs.IsNotFound(err)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("Commit", func() {
		ginkgo.It("should commit onto the image tag with the message", func() {
			mockServer.AppendHandlers(
				mocks.CommitHandler("yum-update-1", "7", "automatic yum update", "sha256:feedface"),
			)

			imageID, err := runtime.Commit(context.Background(), "yum-update-1", "centos:7", "automatic yum update")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(imageID).To(gomega.Equal("sha256:feedface"))
		})

		ginkgo.It("should tag untagged images as latest", func() {
			mockServer.AppendHandlers(
				mocks.CommitHandler("yum-update-3", "latest", "automatic yum update", "sha256:beef"),
			)

			_, err := runtime.Commit(context.Background(), "yum-update-3", "centos", "automatic yum update")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should report daemon failures", func() {
			mockServer.AppendHandlers(mocks.CommitFailureHandler("no space left on device"))

			_, err := runtime.Commit(context.Background(), "yum-update-1", "centos:7", "automatic yum update")
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("failed to commit container")))
		})

		ginkgo.It("should refuse digest-pinned images without calling the daemon", func() {
			_, err := runtime.Commit(
				context.Background(),
				"yum-update-1",
				"centos@sha256:0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
				"automatic yum update",
			)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(mockServer.ReceivedRequests()).To(gomega.BeEmpty())
		})
	})
})
