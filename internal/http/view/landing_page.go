package view

import (
	"bytes"
	"html/template"
)

// LandingLink is one row of the recent-links table.
type LandingLink struct {
	Code    string
	Clicks  int64
	Expires string
}

// LandingPageData provides the dynamic fields required by the landing template.
type LandingPageData struct {
	ShortURL string
	Error    string
	History  []LandingLink
}

var landingPageTmpl = template.Must(template.New("landing_page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>xq by ExploitZ3r0 &ndash; Compress That Address!</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<style>
		body{margin:0;font-family:Verdana,Arial,Helvetica,sans-serif;background:#fff;color:#000;text-align:center}
		#logo{margin:60px 0 20px;font-size:3rem;font-weight:bold;color:#c00}
		#main{max-width:520px;margin:0 auto;padding:0 10px}
		#urlBox{width:100%;padding:6px;font-size:16px;border:1px solid #999;box-sizing:border-box}
		#shortenBtn{margin-top:8px;padding:4px 18px;font-size:14px;cursor:pointer}
		#optionsToggle{font-size:11px;margin-left:6px;cursor:pointer}
		#options{display:none;margin-top:8px;text-align:left;font-size:13px}
		#options label{display:block;margin-bottom:4px}
		#options input{width:100%;padding:4px;margin-bottom:8px;box-sizing:border-box}
		#result{margin-top:12px;font-size:14px;word-break:break-all}
		#result a{color:#c00;text-decoration:none}
		#result a:hover{text-decoration:underline}
		#error{margin-top:8px;color:#c00;font-size:13px}
		table{width:100%;margin-top:15px;font-size:.85rem;border-collapse:collapse}
		td,th{padding:6px;word-break:break-all;border-bottom:1px solid #ddd}
		th{color:#c00;text-align:left}
	</style>
</head>
<body>

<div id="logo">xq</div>

<div id="main">
	<form method="post" action="/">
		<input id="urlBox" name="long_url" type="url" placeholder="Enter a long URL to shorten&hellip;" required>
		<br>
		<button id="shortenBtn" type="submit">Shorten!</button>
		<span id="optionsToggle">&#9660; Further options/custom URL</span>

		<div id="options">
			<label>Custom short code (optional)</label>
			<input id="customCode" name="custom_code" type="text" placeholder="e.g. mylink">
			<label>Expiration date (optional)</label>
			<input id="expDate" name="expiration_date" type="date">
		</div>
	</form>

	{{if .Error}}<div id="error">{{.Error}}</div>{{end}}
	{{if .ShortURL}}
	<div id="result">
		<strong>Your shortened URL:</strong><br>
		<a href="{{.ShortURL}}" target="_blank">{{.ShortURL}}</a>
	</div>
	{{end}}

	{{if .History}}
	<table>
		<tr><th>Short</th><th>Clicks</th><th>Expires</th><th>Action</th></tr>
		{{range .History}}
		<tr>
			<td>
				<a href="/{{.Code}}" target="_blank">{{.Code}}</a>
				<a href="/{{.Code}}+" title="Preview">+</a>
			</td>
			<td>{{.Clicks}}</td>
			<td>{{.Expires}}</td>
			<td>
				<form method="post" action="/delete" style="display:inline;">
					<input type="hidden" name="short_code" value="{{.Code}}">
					<button style="padding:2px 6px;font-size:12px">Del</button>
				</form>
			</td>
		</tr>
		{{end}}
	</table>
	{{end}}
</div>

<script>
const optionsToggle=document.getElementById('optionsToggle');
const optionsDiv=document.getElementById('options');
optionsToggle.addEventListener('click',()=>{
	const open=optionsDiv.style.display==='block';
	optionsDiv.style.display=open?'none':'block';
	optionsToggle.textContent=open?'▼ Further options/custom URL':'▲ Hide options';
});
</script>

</body>
</html>
`))

// RenderLandingPage expands the landing page template with the provided data.
func RenderLandingPage(data LandingPageData) (string, error) {
	var buf bytes.Buffer
	if err := landingPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
