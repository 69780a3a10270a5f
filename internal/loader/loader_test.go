package loader

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sloimpact/internal/model"
	"github.com/roach88/sloimpact/internal/testutil"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func assertSameSystem(t *testing.T, want, got *model.System) {
	t.Helper()
	wantJSON, err := json.Marshal(want)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))
}

func loadErrorCodes(err error) []string {
	var codes []string
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var le *LoadError
			if errors.As(e, &le) {
				codes = append(codes, le.Code)
			}
		}
		return codes
	}
	var le *LoadError
	if errors.As(err, &le) {
		codes = append(codes, le.Code)
	}
	return codes
}

func TestLoadFile_YAML(t *testing.T) {
	sys, err := LoadFile(filepath.Join("testdata", "shop.yaml"))
	require.NoError(t, err)
	assertSameSystem(t, testutil.PaymentSystem(), sys)
}

func TestLoadFile_CUE(t *testing.T) {
	sys, err := LoadFile(filepath.Join("testdata", "shop.cue"))
	require.NoError(t, err)
	assertSameSystem(t, testutil.PaymentSystem(), sys)
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, []string{ErrCodeNotFound}, loadErrorCodes(err))
}

func TestLoadFile_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "model.json", `{}`)
	_, err := LoadFile(path)
	assert.Equal(t, []string{ErrCodeFormat}, loadErrorCodes(err))
}

func TestParseYAML_UnknownField(t *testing.T) {
	_, err := ParseYAML([]byte("id: s\nflavour: vanilla\n"))
	require.Error(t, err)
	assert.Equal(t, []string{ErrCodeParse}, loadErrorCodes(err))
}

func TestParseYAML_Empty(t *testing.T) {
	_, err := ParseYAML(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty document")
}

func TestParseCUE_SchemaViolation(t *testing.T) {
	// Steps must name both an interface and a task.
	src := `
id: "s"
architecture: {id: "a", interfaces: [], components: []}
process: {id: "p", tasks: []}
sagas: [{id: "g", steps: [{id: "st", interface: "f"}]}]
`
	_, err := ParseCUE([]byte(src), "bad.cue")
	require.Error(t, err)
	assert.Equal(t, []string{ErrCodeParse}, loadErrorCodes(err))
}

func TestParseCUE_ClosedSchema(t *testing.T) {
	src := `
id: "s"
architecture: {id: "a", interfaces: [], components: []}
process: {id: "p", tasks: []}
owner: "nobody"
`
	_, err := ParseCUE([]byte(src), "closed.cue")
	require.Error(t, err)
}

func TestParseCUE_SyntaxError(t *testing.T) {
	_, err := ParseCUE([]byte(`id: {`), "broken.cue")
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeParse, le.Code)
}

func TestSession_CollectsAllProblems(t *testing.T) {
	doc := &Document{
		ID: "s",
		Architecture: ArchitectureDoc{
			ID:         "a",
			Interfaces: []ElementDoc{{ID: "f"}, {ID: "f"}},
			Components: []ComponentDoc{{ID: "c", Provides: []string{"f", "ghost"}}},
		},
		Process: ProcessDoc{ID: "p", Tasks: []ElementDoc{{ID: ""}}},
		Sagas: []SagaDoc{{ID: "g", Steps: []StepDoc{
			{ID: "st", Interface: "f", Task: "t-missing"},
		}}},
		Rules: []RuleDoc{
			{ID: "r1"},
			{ID: "r2", Component: "c-missing"},
		},
	}

	sys, err := NewSession().Resolve(doc)
	require.Error(t, err)
	assert.Nil(t, sys)
	assert.ElementsMatch(t, []string{
		ErrCodeDuplicate,  // interface f twice
		ErrCodeMissingID,  // task without id
		ErrCodeDangling,   // provides ghost
		ErrCodeDangling,   // step task
		ErrCodeNoLocation, // r1
		ErrCodeDangling,   // r2 component
	}, loadErrorCodes(err))
}

func TestSession_RegistryLookups(t *testing.T) {
	doc, err := ParseYAML(mustRead(t, filepath.Join("testdata", "shop.yaml")))
	require.NoError(t, err)

	sess := NewSession()
	sys, err := sess.Resolve(doc)
	require.NoError(t, err)

	face, ok := sess.Interface(testutil.FacePay)
	require.True(t, ok)
	sysFace, _ := sys.Interface(testutil.FacePay)
	assert.Same(t, sysFace, face)

	_, ok = sess.Component(testutil.CompGateway)
	assert.True(t, ok)
	_, ok = sess.Task(testutil.TaskPay)
	assert.True(t, ok)
	_, ok = sess.Step(testutil.StepInventory)
	assert.True(t, ok)
	rule, ok := sess.Rule(testutil.RuleCreditLatency)
	require.True(t, ok)
	assert.Equal(t, testutil.PaymentArchitecture, rule.ArchitectureID)
}

func TestSession_IsolatedPerImport(t *testing.T) {
	doc, err := ParseYAML(mustRead(t, filepath.Join("testdata", "shop.yaml")))
	require.NoError(t, err)

	// The same document imports cleanly twice in separate sessions.
	_, err = NewSession().Resolve(doc)
	require.NoError(t, err)
	_, err = NewSession().Resolve(doc)
	require.NoError(t, err)

	// Reusing one session registers every ID a second time.
	sess := NewSession()
	_, err = sess.Resolve(doc)
	require.NoError(t, err)
	_, err = sess.Resolve(doc)
	assert.Contains(t, loadErrorCodes(err), ErrCodeDuplicate)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestDecode_AllFormats(t *testing.T) {
	yamlData := mustRead(t, filepath.Join("testdata", "shop.yaml"))
	fromYAML, err := Decode(yamlData, FormatYAML)
	require.NoError(t, err)

	jsonData, err := json.Marshal(fromYAML)
	require.NoError(t, err)
	fromJSON, err := Decode(jsonData, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, fromYAML, fromJSON)

	fromCUE, err := Decode(mustRead(t, filepath.Join("testdata", "shop.cue")), FormatCUE)
	require.NoError(t, err)
	assert.Equal(t, fromYAML.ID, fromCUE.ID)

	_, err = Decode([]byte(`{"id":"s","owner":"x"}`), FormatJSON)
	assert.Equal(t, []string{ErrCodeParse}, loadErrorCodes(err))

	_, err = Decode(yamlData, "toml")
	assert.Equal(t, []string{ErrCodeFormat}, loadErrorCodes(err))
}

func TestFormatFromContentType(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromContentType("application/json; charset=utf-8"))
	assert.Equal(t, FormatCUE, FormatFromContentType("text/x-cue"))
	assert.Equal(t, FormatYAML, FormatFromContentType("application/yaml"))
	assert.Equal(t, FormatYAML, FormatFromContentType(""))
}

func TestBuild(t *testing.T) {
	doc, err := ParseYAML(mustRead(t, filepath.Join("testdata", "shop.yaml")))
	require.NoError(t, err)

	sys, warnings, err := Build(doc)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assertSameSystem(t, testutil.PaymentSystem(), sys)
}

func TestBuild_CycleWarnings(t *testing.T) {
	doc := &Document{
		ID: "loop",
		Architecture: ArchitectureDoc{
			ID:         "arch-loop",
			Interfaces: []ElementDoc{{ID: "a"}, {ID: "b"}},
			Components: []ComponentDoc{
				{ID: "ca", Provides: []string{"a"}, Consumes: []string{"b"}},
				{ID: "cb", Provides: []string{"b"}, Consumes: []string{"a"}},
			},
		},
		Process: ProcessDoc{ID: "p"},
	}
	sys, warnings, err := Build(doc)
	require.NoError(t, err)
	assert.NotNil(t, sys)
	require.Len(t, warnings, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, warnings[0].Path[:2])
}

func TestBuild_ValidationErrors(t *testing.T) {
	// Two components providing the same interface resolve fine but do not
	// validate.
	doc := &Document{
		ID: "shared",
		Architecture: ArchitectureDoc{
			ID:         "arch",
			Interfaces: []ElementDoc{{ID: "a"}},
			Components: []ComponentDoc{
				{ID: "c1", Provides: []string{"a"}},
				{ID: "c2", Provides: []string{"a"}},
			},
		},
		Process: ProcessDoc{ID: "p"},
	}
	_, _, err := Build(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), model.ErrSharedInterface)
}
