package actions_test

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/container-check/internal/actions"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

var _ = ginkgo.Describe("ValidateParams", func() {
	ginkgo.It("should accept the defaults", func() {
		gomega.Expect(actions.ValidateParams(auditParams, updateParams)).To(gomega.Succeed())
	})

	ginkgo.It("should reject an empty list command", func() {
		audit := auditParams
		audit.ListCommand = nil
		gomega.Expect(actions.ValidateParams(audit, updateParams)).
			To(gomega.MatchError(gomega.ContainSubstring("list command")))
	})

	ginkgo.It("should reject an empty update command", func() {
		update := updateParams
		update.UpdateCommand = nil
		gomega.Expect(actions.ValidateParams(auditParams, update)).
			To(gomega.MatchError(gomega.ContainSubstring("update command")))
	})

	ginkgo.DescribeTable("transaction prefixes",
		func(prefix string, valid bool) {
			update := updateParams
			update.TransactionPrefix = prefix

			err := actions.ValidateParams(auditParams, update)
			if valid {
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
			} else {
				gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("invalid transaction prefix")))
			}
		},
		ginkgo.Entry("default", "yum-update-", true),
		ginkgo.Entry("empty", "", true),
		ginkgo.Entry("dotted", "nightly.update_", true),
		ginkgo.Entry("leading dash", "-update", false),
		ginkgo.Entry("slash", "yum/update-", false),
		ginkgo.Entry("space", "yum update", false),
	)

	ginkgo.It("should reject relative mounts", func() {
		update := updateParams
		update.Mounts = []types.Mount{{Source: "etc/yum.repos.d", Target: "/etc/yum.repos.d"}}
		gomega.Expect(actions.ValidateParams(auditParams, update)).
			To(gomega.MatchError(gomega.ContainSubstring("mount paths must be absolute")))
	})
})
