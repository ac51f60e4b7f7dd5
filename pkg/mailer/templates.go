package mailer

import (
	"bytes"
	"fmt"
	htmltpl "html/template"
	texttpl "text/template"
)

// Template names understood by Render.
const (
	TemplateWelcome         = "welcome"
	TemplateSnapshotReceipt = "snapshot_receipt"
)

type tplPair struct {
	subject string
	text    *texttpl.Template
	html    *htmltpl.Template
}

var templates = map[string]tplPair{
	TemplateWelcome: {
		subject: "Welcome to your net worth tracker",
		text: texttpl.Must(texttpl.New("welcome_text").Parse(
			"Hi {{.Name}},\n\n" +
				"Your account is ready. Add your first financial account to start " +
				"tracking your net worth.\n")),
		html: htmltpl.Must(htmltpl.New("welcome_html").Parse(
			"<p>Hi {{.Name}},</p>" +
				"<p>Your account is ready. Add your first financial account to start " +
				"tracking your net worth.</p>")),
	},
	TemplateSnapshotReceipt: {
		subject: "Balance snapshot recorded",
		text: texttpl.Must(texttpl.New("receipt_text").Parse(
			"Hi {{.Name}},\n\n" +
				"Your balance snapshot for {{.Date}} was recorded.\n" +
				"Net worth: {{.Currency}}{{.NetWorth}}\n")),
		html: htmltpl.Must(htmltpl.New("receipt_html").Parse(
			"<p>Hi {{.Name}},</p>" +
				"<p>Your balance snapshot for {{.Date}} was recorded.</p>" +
				"<p>Net worth: <strong>{{.Currency}}{{.NetWorth}}</strong></p>")),
	},
}

// Render fills the named template and returns subject, text and HTML bodies.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	p, ok := templates[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	var tb, hb bytes.Buffer
	if err := p.text.Execute(&tb, data); err != nil {
		return "", "", "", err
	}
	if err := p.html.Execute(&hb, data); err != nil {
		return "", "", "", err
	}
	return p.subject, tb.String(), hb.String(), nil
}
