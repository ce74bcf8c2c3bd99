package b64test

import (
	"testing"

	"github.com/averykhoo/base64file"
)

func TestSuite_Buffer(t *testing.T) {
	TestSuite(t, func(t *testing.T) base64file.Medium {
		return base64file.NewBuffer(nil)
	})
}
