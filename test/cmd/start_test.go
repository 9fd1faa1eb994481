package cmd

import (
	. "github.com/onsi/ginkgo/v2"
	"github.com/stretchr/testify/assert"
	"github.com/webhookx-io/hookdash/cmd"
	"github.com/webhookx-io/hookdash/test/helper"
)

var _ = Describe("start", Ordered, func() {
	It("refuses to start with pending migrations", func() {
		assert.Nil(GinkgoT(), helper.ResetDB())
		_, err := executeCommand(cmd.NewRootCmd(), "db", "reset", "--yes")
		assert.Nil(GinkgoT(), err)

		_, err = executeCommand(cmd.NewRootCmd(), "start")
		assert.EqualError(GinkgoT(), err, "database is not up to date. Run 'hookdash db up' before starting")

		_, err = executeCommand(cmd.NewRootCmd(), "db", "up")
		assert.Nil(GinkgoT(), err)
	})
})
