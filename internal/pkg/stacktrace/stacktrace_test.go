package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/emailcode/internal/emailauth/usecase.(*Usecase).Action(...)
	/src/internal/emailauth/usecase/action.go:41 +0x1a
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2294
`)

	got := InternalPaths(stack)

	assert.Equal(t, []string{"internal/emailauth/usecase/action.go:41"}, got)
}
