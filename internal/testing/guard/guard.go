package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("AJOVEST_TEST_MODE") == "" {
			_ = os.Setenv("AJOVEST_TEST_MODE", "1")
		}
	})
}
