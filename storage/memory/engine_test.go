package memory_test

import (
	"testing"

	"github.com/picatz/kvorm/storage"
	"github.com/picatz/kvorm/storage/memory"
	"github.com/picatz/kvorm/storage/tests"
)

func TestEngine(t *testing.T) {
	tests.EngineSuite(t, memory.NewEngine())
}

func TestEngine_store(t *testing.T) {
	tests.StoreSuite(t, func(t *testing.T) storage.Engine {
		return memory.NewEngine()
	})
}
