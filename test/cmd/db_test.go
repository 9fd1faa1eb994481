package cmd

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	"github.com/stretchr/testify/assert"
	"github.com/webhookx-io/hookdash/cmd"
	"github.com/webhookx-io/hookdash/test/helper"
)

var _ = Describe("db", Ordered, func() {

	BeforeAll(func() {
		assert.Nil(GinkgoT(), helper.ResetDB())
	})

	It("resets and migrates", func() {
		output, err := executeCommand(cmd.NewRootCmd(), "db", "reset", "--yes")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), "resetting database...\ndatabase successfully reset\n", output)

		output, err = executeCommand(cmd.NewRootCmd(), "db", "status")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), "Current version: 0\nDirty: false\nPending: true\n", output)

		output, err = executeCommand(cmd.NewRootCmd(), "db", "up")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), "database is up-to-date\n", output)

		output, err = executeCommand(cmd.NewRootCmd(), "db", "status")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), "Current version: 1\nDirty: false\nPending: false\n", output)
	})

	It("is idempotent", func() {
		output, err := executeCommand(cmd.NewRootCmd(), "db", "up", "-q")
		assert.Nil(GinkgoT(), err)
		assert.Equal(GinkgoT(), "", output)
	})

	It("asks before resetting", func() {
		root := cmd.NewRootCmd()
		root.SetIn(strings.NewReader("n\n"))
		output, err := executeCommand(root, "db", "reset")
		assert.EqualError(GinkgoT(), err, "canceled")
		assert.Contains(GinkgoT(), output, "> Are you sure? This operation is irreversible. [Y/N] ")
	})
})
