package container_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	cerrdefs "github.com/containerd/errdefs"

	"github.com/nicholas-fedor/container-check/pkg/container"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// fakeRuntimeScript mimics the docker CLI closely enough for the CLI runtime.
const fakeRuntimeScript = `#!/bin/sh
case "$1" in
  rm)
    if [ "$3" = "missing" ]; then
      echo "Error response from daemon: No such container: $3" >&2
      exit 1
    fi
    exit 0
    ;;
  commit)
    echo "sha256:feedface"
    exit 0
    ;;
  *)
    shift
    echo "$@"
    echo "warning: emulated" >&2
    exit 3
    ;;
esac
`

var _ = ginkgo.Describe("the CLI runtime", func() {
	ginkgo.Describe("RunArgs", func() {
		ginkgo.It("should build a minimal run", func() {
			gomega.Expect(container.RunArgs(types.RunSpec{
				Image:   "centos:7",
				Command: []string{"rpm", "-qa"},
			})).To(gomega.Equal([]string{"run", "centos:7", "rpm", "-qa"}))
		})

		ginkgo.It("should place every option before the image", func() {
			gomega.Expect(container.RunArgs(types.RunSpec{
				Image:       "centos:7",
				Command:     []string{"yum", "-y", "update"},
				Name:        "yum-update-1",
				AutoRemove:  true,
				NetworkMode: "host",
				User:        "root",
				Mounts: []types.Mount{
					{Source: "/srv/repos", Target: "/etc/yum.repos.d"},
				},
			})).To(gomega.Equal([]string{
				"run", "--user", "root", "--rm", "--net", "host",
				"--volume", "/srv/repos:/etc/yum.repos.d",
				"--name", "yum-update-1",
				"centos:7", "yum", "-y", "update",
			}))
		})
	})

	ginkgo.Describe("with a fake binary", func() {
		var runtime *container.CLI

		ginkgo.BeforeEach(func() {
			binary := filepath.Join(ginkgo.GinkgoT().TempDir(), "docker")
			gomega.Expect(os.WriteFile(binary, []byte(fakeRuntimeScript), 0o755)).To(gomega.Succeed())
			runtime = container.NewCLI(binary)
		})

		ginkgo.It("should be named after the binary", func() {
			gomega.Expect(runtime.Name()).To(gomega.Equal("docker-cli"))
		})

		ginkgo.It("should report exit status and both streams", func() {
			result, err := runtime.CreateAndRun(context.Background(), types.RunSpec{
				Image:      "centos:7",
				Command:    []string{"rpm", "-qa"},
				AutoRemove: true,
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.ExitCode).To(gomega.Equal(3))
			gomega.Expect(result.Stdout).To(gomega.Equal("--rm centos:7 rpm -qa\n"))
			gomega.Expect(result.Stderr).To(gomega.Equal("warning: emulated\n"))
		})

		ginkgo.It("should remove existing containers", func() {
			gomega.Expect(runtime.Remove(context.Background(), "yum-update-1")).To(gomega.Succeed())
		})

		ginkgo.It("should classify a missing container as not found", func() {
			err := runtime.Remove(context.Background(), "missing")
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(cerrdefs.IsNotFound(err)).To(gomega.BeTrue())
		})

		ginkgo.It("should return the committed image ID", func() {
			imageID, err := runtime.Commit(context.Background(), "yum-update-1", "centos:7", "automatic yum update")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(imageID).To(gomega.Equal("sha256:feedface"))
		})
	})

	ginkgo.When("the binary does not exist", func() {
		ginkgo.It("should fail to run", func() {
			runtime := container.NewCLI(filepath.Join(ginkgo.GinkgoT().TempDir(), "absent"))

			result, err := runtime.CreateAndRun(context.Background(), types.RunSpec{
				Image:   "centos:7",
				Command: []string{"rpm", "-qa"},
			})
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("failed to execute runtime binary")))
			gomega.Expect(result.ExitCode).To(gomega.Equal(-1))
		})
	})

	ginkgo.It("should default to docker", func() {
		gomega.Expect(container.NewCLI("").Name()).To(gomega.Equal("docker-cli"))
	})
})
