package inspection_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obralabs/sentinela/svc/inspection"
)

func TestRenderReport(t *testing.T) {
	t.Parallel()

	data := inspection.ReportData{
		Title:       "Inspeção NR-18",
		ProjectName: "Obra Centro",
		Inspector:   "Maria Silva",
		Date:        time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC),
		Score:       85,
		Items: []inspection.ChecklistItem{
			{Question: "EPI em uso", Answer: inspection.AnswerCompliant},
			{Question: "Guarda-corpo instalado", Answer: inspection.AnswerNonCompliant, Observation: "Faltando no 3º andar"},
			{Question: "Içamento de cargas", Answer: inspection.AnswerNotApplicable},
		},
		PhotoURLs: []string{"https://cdn.test/foto1.jpg"},
		Signature: "https://cdn.test/assinatura.png",
	}

	var sb strings.Builder
	require.NoError(t, inspection.RenderReport(&sb, data))
	html := sb.String()

	assert.Contains(t, html, "Inspeção NR-18")
	assert.Contains(t, html, "Obra Centro")
	assert.Contains(t, html, "Maria Silva")
	assert.Contains(t, html, "30/08/2026")
	assert.Contains(t, html, "85%")
	assert.Contains(t, html, "Conforme")
	assert.Contains(t, html, "Não conforme")
	assert.Contains(t, html, "N/A")
	assert.Contains(t, html, "Faltando no 3º andar")
	assert.Contains(t, html, "https://cdn.test/foto1.jpg")
	assert.Contains(t, html, "https://cdn.test/assinatura.png")
}

func TestRenderReport_EscapesUserContent(t *testing.T) {
	t.Parallel()

	data := inspection.ReportData{
		Title: `<script>alert("x")</script>`,
		Items: []inspection.ChecklistItem{
			{Question: "<img src=x onerror=alert(1)>", Answer: inspection.AnswerCompliant},
		},
	}

	var sb strings.Builder
	require.NoError(t, inspection.RenderReport(&sb, data))
	html := sb.String()

	assert.NotContains(t, html, "<script>alert")
	assert.NotContains(t, html, "<img src=x")
}

func TestRenderReport_OmitsEmptySections(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, inspection.RenderReport(&sb, inspection.ReportData{Title: "Vistoria"}))
	html := sb.String()

	assert.NotContains(t, html, "Evidências fotográficas")
	assert.NotContains(t, html, "Assinatura:")
}
