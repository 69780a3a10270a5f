package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sloimpact/internal/model"
	"github.com/roach88/sloimpact/internal/testutil"
)

func codes(errs []model.ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_FixturesAreValid(t *testing.T) {
	assert.Empty(t, model.Validate(testutil.PaymentSystem()))
	assert.Empty(t, model.Validate(testutil.CyclicSystem()))
}

func TestValidate_DanglingReferences(t *testing.T) {
	sys := testutil.PaymentSystem()
	sys.Sagas[0].Steps = append(sys.Sagas[0].Steps, &model.SagaStep{
		ID: "step-ghost", InterfaceID: "face-ghost", TaskID: "Task_ghost",
	})
	sys.Rules = append(sys.Rules, &model.SloRule{ID: "slo-ghost", ComponentID: "comp-ghost"})

	errs := model.Validate(sys)
	assert.ElementsMatch(t, []string{
		model.ErrDanglingInterface,
		model.ErrDanglingTask,
		model.ErrDanglingComponent,
	}, codes(errs))
}

func TestValidate_RuleWithoutLocation(t *testing.T) {
	sys := testutil.PaymentSystem()
	sys.Rules = append(sys.Rules, &model.SloRule{ID: "slo-nowhere", ArchitectureID: testutil.PaymentArchitecture})

	errs := model.Validate(sys)
	require.Len(t, errs, 1)
	assert.Equal(t, model.ErrRuleNoLocation, errs[0].Code)
	assert.Contains(t, errs[0].Error(), "slo-nowhere")
}

func TestValidate_DuplicatesAndSharing(t *testing.T) {
	sys := testutil.PaymentSystem()
	sys.Architecture.Interfaces = append(sys.Architecture.Interfaces, &model.Interface{ID: testutil.FacePay})
	sys.Architecture.Components = append(sys.Architecture.Components, &model.Component{
		ID: "comp-copycat", Provides: []string{testutil.FaceCredit},
	})

	errs := model.Validate(sys)
	assert.ElementsMatch(t, []string{model.ErrDuplicateID, model.ErrSharedInterface}, codes(errs))
}

func TestValidate_OrphanAndWrongArchitecture(t *testing.T) {
	sys := testutil.PaymentSystem()
	sys.Architecture.Interfaces = append(sys.Architecture.Interfaces, &model.Interface{ID: "face-orphan"})
	sys.Rules[0].ArchitectureID = "arch-elsewhere"

	errs := model.Validate(sys)
	assert.ElementsMatch(t, []string{model.ErrOrphanInterface, model.ErrWrongArchitecture}, codes(errs))
}

func TestValidate_MissingIDs(t *testing.T) {
	sys := &model.System{
		Architecture: model.Architecture{
			Interfaces: []*model.Interface{{Name: "no id"}},
		},
	}
	errs := model.Validate(sys)
	assert.Contains(t, codes(errs), model.ErrMissingID)
}
