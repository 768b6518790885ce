package container

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/container-check/pkg/types"
)

var _ = ginkgo.Describe("container utils", func() {
	ginkgo.Describe("shortID", func() {
		ginkgo.When("given a long image ID", func() {
			ginkgo.It("should strip the sha256 prefix and truncate", func() {
				actual := shortID("sha256:0123456789abcd00000000001111111111222222222233333333334444444444")
				gomega.Expect(actual).To(gomega.Equal("0123456789ab"))
			})
			ginkgo.It("should truncate an unprefixed ID", func() {
				actual := shortID("0123456789abcd00000000001111111111222222222233333333334444444444")
				gomega.Expect(actual).To(gomega.Equal("0123456789ab"))
			})
		})
		ginkgo.When("given a short ID", func() {
			ginkgo.It("should return it unchanged", func() {
				gomega.Expect(shortID("0123456789ab")).To(gomega.Equal("0123456789ab"))
				gomega.Expect(shortID("")).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("binds", func() {
		ginkgo.It("should render read-write and read-only mounts", func() {
			gomega.Expect(binds([]types.Mount{
				{Source: "/srv/repos", Target: "/etc/yum.repos.d"},
				{Source: "/srv/keys", Target: "/etc/pki/rpm-gpg", ReadOnly: true},
			})).To(gomega.Equal([]string{
				"/srv/repos:/etc/yum.repos.d",
				"/srv/keys:/etc/pki/rpm-gpg:ro",
			}))
		})
		ginkgo.It("should return nil without mounts", func() {
			gomega.Expect(binds(nil)).To(gomega.BeNil())
		})
	})
})
