package view

import (
	"bytes"
	"html/template"
)

// PreviewPageData provides the dynamic fields required by the preview template.
type PreviewPageData struct {
	Code    string
	LongURL string
	Clicks  int64
}

var previewPageTmpl = template.Must(template.New("preview_page").Parse(`<html><body style="background:#fff;color:#000;font-family:Verdana,Arial,Helvetica,sans-serif;
display:flex;align-items:center;justify-content:center;height:100vh;">
<div style="border:1px solid #ccc;padding:25px;width:420px;text-align:center;">
<h2 style="color:#c00;">Link Preview</h2>
<p>Redirects to:</p>
<a href="{{.LongURL}}" style="color:#c00;" target="_blank">{{.LongURL}}</a>
<p>Clicks: {{.Clicks}}</p>
<a href="/{{.Code}}">
<button style="margin-top:15px;padding:8px 16px;">Continue &rarr;</button>
</a>
</div></body></html>
`))

// RenderPreviewPage expands the preview page template with the provided data.
func RenderPreviewPage(data PreviewPageData) (string, error) {
	var buf bytes.Buffer
	if err := previewPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
