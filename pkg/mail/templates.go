package mail

import (
	"bytes"
	_ "embed"
	"html/template"
)

type AcknowledgmentParams struct {
	Name string
	Year int
}

type AlertParams struct {
	Name    string
	Email   string
	Number  string
	Message string
	Year    int
}

var (
	acknowledgmentTemplate = template.New("acknowledgment")
	alertTemplate          = template.New("alert")

	//go:embed templates/acknowledgment.html
	acknowledgmentTemplateRaw string
	//go:embed templates/alert.html
	alertTemplateRaw string
)

func init() {
	if _, err := acknowledgmentTemplate.Parse(acknowledgmentTemplateRaw); err != nil {
		panic(err)
	}
	if _, err := alertTemplate.Parse(alertTemplateRaw); err != nil {
		panic(err)
	}
}

func render(t *template.Template, p any) (string, error) {
	b := bytes.Buffer{}
	err := t.Execute(&b, p)
	return b.String(), err
}

// RenderAcknowledgment renders the thank-you body sent to the submitter.
func RenderAcknowledgment(p AcknowledgmentParams) (string, error) {
	return render(acknowledgmentTemplate, p)
}

// RenderAlert renders the internal alert body sent to the operator mailbox.
func RenderAlert(p AlertParams) (string, error) {
	return render(alertTemplate, p)
}
