package intel

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies no test leaks a debounce timer callback or a scan
// goroutine past Stop.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("sync.runtime_Semacquire"),
	)
}
