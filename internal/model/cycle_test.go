package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sloimpact/internal/model"
	"github.com/roach88/sloimpact/internal/testutil"
)

func TestAnalyzeCycles_Empty(t *testing.T) {
	assert.Empty(t, model.AnalyzeCycles(&model.System{}))
}

func TestAnalyzeCycles_DAG(t *testing.T) {
	assert.Empty(t, model.AnalyzeCycles(testutil.PaymentSystem()))
}

func TestAnalyzeCycles_TwoNodeCycle(t *testing.T) {
	warnings := model.AnalyzeCycles(testutil.CyclicSystem())
	require.Len(t, warnings, 1)

	w := warnings[0]
	assert.Equal(t, "warning", w.Level)
	assert.Equal(t, []string{testutil.FaceLoopA, testutil.FaceLoopB, testutil.FaceLoopA}, w.Path)
	assert.Contains(t, w.Message, "consumer cycle detected")
}

func TestAnalyzeCycles_SelfLoop(t *testing.T) {
	sys := &model.System{
		Architecture: model.Architecture{
			ID:         "arch",
			Interfaces: []*model.Interface{{ID: "echo"}},
			Components: []*model.Component{
				{ID: "c", Provides: []string{"echo"}, Consumes: []string{"echo"}},
			},
		},
	}
	warnings := model.AnalyzeCycles(sys)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"echo", "echo"}, warnings[0].Path)
}

func TestAnalyzeCycles_RealizedInterfaceBreaksCycle(t *testing.T) {
	// Propagation stops fanning out at an interface realized by a saga step,
	// so a cycle through it is never walked.
	sys := testutil.CyclicSystem()
	sys.Process.Tasks = []*model.Task{{ID: "task-loop"}}
	sys.Sagas = []*model.Saga{{
		ID:    "saga-loop",
		Steps: []*model.SagaStep{{ID: "step-loop", InterfaceID: testutil.FaceLoopB, TaskID: "task-loop"}},
	}}
	assert.Empty(t, model.AnalyzeCycles(sys))
}
