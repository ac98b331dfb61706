package memory_test

import (
	"testing"

	"github.com/veladahq/velada/pkg/adapters/memory"
	"github.com/veladahq/velada/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunDraftStoreContract(t, memory.NewStore())
}
