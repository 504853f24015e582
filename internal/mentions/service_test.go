package mentions

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/federicodeponte/openanalytics/internal/genai"
	"github.com/federicodeponte/openanalytics/internal/model"
)

// branchLLM answers the JSON generation call with queryJSON and every probe
// with the mapped answer.
type branchLLM struct {
	mu        sync.Mutex
	queryJSON string
	answers   map[string]string
}

func (b *branchLLM) Generate(_ context.Context, req genai.GenerateRequest) (*genai.GenerateResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if req.JSONOutput {
		return &genai.GenerateResult{Text: b.queryJSON}, nil
	}
	return &genai.GenerateResult{Text: b.answers[req.Prompt]}, nil
}

func TestServiceRunEndToEnd(t *testing.T) {
	llm := &branchLLM{
		queryJSON: `[{"query":"best crm for dentists","dimension":"UNBRANDED_HYPERNICHE"},
		             {"query":"Acme reviews","dimension":"BRANDED_DIRECT"}]`,
		answers: map[string]string{
			"best crm for dentists": "Most practices choose Acme.",
			"Acme reviews":          "Mixed feedback overall.",
		},
	}
	svc := NewService(llm)

	report, err := svc.Run(context.Background(), model.CompanyProfile{Name: "Acme"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "Acme", report.CompanyName)
	require.Len(t, report.QueriesGenerated, 2)
	require.Len(t, report.QueryResults, 2)
	assert.Equal(t, 50.0, report.Visibility)
	assert.Equal(t, 1, report.Mentions)
	assert.Positive(t, report.ExecutionTime)
}

func TestServiceRunWithPlatforms(t *testing.T) {
	llm := &branchLLM{
		queryJSON: `[{"query":"q1","dimension":"UNBRANDED_HYPERNICHE"}]`,
		answers:   map[string]string{"q1": "Acme wins."},
	}
	svc := NewService(llm, &stubPlatform{name: "claude", text: "Acme again."})

	report, err := svc.Run(context.Background(), model.CompanyProfile{Name: "Acme"}, 1)
	require.NoError(t, err)
	require.Contains(t, report.ByPlatform, "claude")
	assert.Equal(t, 1, report.ByPlatform["claude"].Mentions)
}

func TestServiceRunRequiresCompanyName(t *testing.T) {
	svc := NewService(&branchLLM{})
	_, err := svc.Run(context.Background(), model.CompanyProfile{}, 5)
	require.Error(t, err)
}
