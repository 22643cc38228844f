package render

import (
	"html/template"
	"strings"

	"github.com/openboard-dev/openboard/internal/domain"
	"github.com/openboard-dev/openboard/internal/logger"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.MetaTitle}}</title>
{{if .MetaDescription}}<meta name="description" content="{{.MetaDescription}}">{{end}}
{{if .OgImage}}<meta property="og:image" content="{{.OgImage}}">{{end}}
<style>
:root {
  --background: {{.Theme.Background}};
  --primary: {{.Theme.PrimaryColor}};
  --text: {{.Theme.TextColor}};
  --card-bg: {{.Theme.CardBackground}};
  --card-border: {{.Theme.CardBorder}};
}
body { background: var(--background); color: var(--text); font-family: {{.FontBody}}, sans-serif; margin: 0; }
h1, h2, h3 { font-family: {{.FontHeading}}, sans-serif; }
main { max-width: 680px; margin: 0 auto; padding: 2rem 1rem; }
.block { margin-bottom: 1rem; }
.block--hidden { opacity: 0.4; }
</style>
</head>
<body>
<main>
<header><h1>{{.Title}}</h1>{{if .Description}}<p>{{.Description}}</p>{{end}}</header>
{{.Body}}
</main>
</body>
</html>
`))

type pageData struct {
	Title           string
	Description     string
	MetaTitle       string
	MetaDescription string
	OgImage         string
	Theme           domain.Theme
	FontHeading     string
	FontBody        string
	Body            template.HTML
}

// Page renders the complete public HTML page for a board. Blocks arrive
// pre-filtered and sorted (PublicView), so a failed fragment is logged and
// skipped rather than failing the whole page.
func (r *Renderer) Page(board domain.PublicBoard) (template.HTML, error) {
	var body strings.Builder
	for _, b := range board.Blocks {
		fragment, err := r.Block(b, false)
		if err != nil {
			logger.Log.Error("failed to render block", "block_id", b.Id, "type", b.Type, "error", err)
			continue
		}
		body.WriteString(string(fragment))
	}

	title := board.Seo.MetaTitle
	if title == "" {
		title = board.Title
	}
	fontHeading := board.Theme.FontHeading
	if fontHeading == "" {
		fontHeading = "Inter"
	}
	fontBody := board.Theme.FontBody
	if fontBody == "" {
		fontBody = "Inter"
	}

	var out strings.Builder
	err := pageTemplate.Execute(&out, pageData{
		Title:           board.Title,
		Description:     board.Description,
		MetaTitle:       title,
		MetaDescription: board.Seo.MetaDescription,
		OgImage:         board.Seo.OgImage,
		Theme:           board.Theme,
		FontHeading:     fontHeading,
		FontBody:        fontBody,
		Body:            template.HTML(body.String()),
	})
	if err != nil {
		return "", err
	}
	return template.HTML(out.String()), nil
}
