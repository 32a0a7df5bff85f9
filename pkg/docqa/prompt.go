package docqa

import (
	"strings"
	"text/template"
)

const defaultPrompt = `Answer the question using only the document below.
If the document does not contain the answer, say that you cannot find it in the document.

Document:
"""
{{.Context}}
"""

Question: {{.Question}}
Answer:`

var promptTemplate = template.Must(template.New("docqa").Option("missingkey=error").Parse(defaultPrompt))

type promptData struct {
	Context  string
	Question string
}

func renderPrompt(tmpl *template.Template, context, question string) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, promptData{Context: context, Question: question}); err != nil {
		return "", err
	}
	return sb.String(), nil
}
