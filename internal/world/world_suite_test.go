package world

import (
	"testing"

	g "github.com/onsi/ginkgo/v2"
	o "github.com/onsi/gomega"
)

func TestWorldSuite(t *testing.T) {
	o.RegisterFailHandler(g.Fail)
	g.RunSpecs(t, "World Suite")
}
