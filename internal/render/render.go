// Package render turns blocks into safe HTML fragments for the public board
// page. Every block variant has exactly one renderer; the dispatch switch is
// exhaustive over the closed variant set and fails loudly on an unknown tag.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/openboard-dev/openboard/internal/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

type Renderer struct {
	md    goldmark.Markdown
	ugc   *bluemonday.Policy
	embed *bluemonday.Policy
}

func New() *Renderer {
	embed := bluemonday.UGCPolicy()
	// embed blocks carry third-party widget markup; iframes are allowed but
	// scripts stay banned
	embed.AllowElements("iframe")
	embed.AllowAttrs("src", "width", "height", "frameborder", "allow", "allowfullscreen", "title").OnElements("iframe")

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		),
		ugc:   bluemonday.UGCPolicy(),
		embed: embed,
	}
}

// Block renders one block. Invisible blocks render to nothing on the public
// surface; in editing mode they come back wrapped in a dimmed container so
// the owner still sees them.
func (r *Renderer) Block(b domain.Block, editing bool) (template.HTML, error) {
	if !b.Visible && !editing {
		return "", nil
	}

	body, err := r.dispatch(b)
	if err != nil {
		return "", err
	}

	if editing && !b.Visible {
		return template.HTML(`<div class="block block--hidden">` + string(body) + `</div>`), nil
	}
	return template.HTML(`<div class="block">` + string(body) + `</div>`), nil
}

func (r *Renderer) dispatch(b domain.Block) (template.HTML, error) {
	switch s := b.Settings.(type) {
	case *domain.LinkSettings:
		return r.link(s), nil
	case *domain.TextSettings:
		return r.text(s), nil
	case *domain.RichTextSettings:
		return r.richText(s)
	case *domain.ImageSettings:
		return r.image(s), nil
	case *domain.VideoSettings:
		return r.video(s), nil
	case *domain.EmbedSettings:
		return r.embedHTML(s), nil
	case *domain.ButtonSettings:
		return r.button(s), nil
	case *domain.SocialLinksSettings:
		return r.socialLinks(s), nil
	case *domain.CalendarSettings:
		return r.calendar(s), nil
	case *domain.FormSettings:
		return r.form(s), nil
	case *domain.DividerSettings:
		return r.divider(s), nil
	case *domain.SpacerSettings:
		return r.spacer(s), nil
	default:
		return "", fmt.Errorf("no renderer for block type %q", b.Type)
	}
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}

func (r *Renderer) link(s *domain.LinkSettings) template.HTML {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<a class="link-card" href="%s" rel="noopener noreferrer">`, esc(s.Url))
	if s.Thumbnail != "" {
		fmt.Fprintf(&sb, `<img class="link-card__thumb" src="%s" alt="">`, esc(s.Thumbnail))
	}
	fmt.Fprintf(&sb, `<span class="link-card__title">%s</span>`, esc(s.Title))
	if s.Description != "" {
		fmt.Fprintf(&sb, `<span class="link-card__desc">%s</span>`, esc(s.Description))
	}
	sb.WriteString(`</a>`)
	return template.HTML(sb.String())
}

func (r *Renderer) text(s *domain.TextSettings) template.HTML {
	align := s.Align
	if align == "" {
		align = "left"
	}
	return template.HTML(fmt.Sprintf(`<p class="text text--%s">%s</p>`, esc(align), esc(s.Text)))
}

func (r *Renderer) richText(s *domain.RichTextSettings) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(s.Markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	safe := r.ugc.SanitizeBytes(buf.Bytes())
	return template.HTML(`<div class="richtext">` + string(safe) + `</div>`), nil
}

func (r *Renderer) image(s *domain.ImageSettings) template.HTML {
	img := fmt.Sprintf(`<img src="%s" alt="%s">`, esc(s.Url), esc(s.Alt))
	if s.LinkUrl != "" {
		img = fmt.Sprintf(`<a href="%s" rel="noopener noreferrer">%s</a>`, esc(s.LinkUrl), img)
	}
	if s.Caption != "" {
		img += fmt.Sprintf(`<figcaption>%s</figcaption>`, esc(s.Caption))
	}
	return template.HTML(`<figure class="image">` + img + `</figure>`)
}

func (r *Renderer) video(s *domain.VideoSettings) template.HTML {
	autoplay := ""
	if s.Autoplay {
		autoplay = " autoplay muted"
	}
	out := fmt.Sprintf(`<video class="video" src="%s" controls%s></video>`, esc(s.Url), autoplay)
	if s.Caption != "" {
		out += fmt.Sprintf(`<p class="video__caption">%s</p>`, esc(s.Caption))
	}
	return template.HTML(out)
}

func (r *Renderer) embedHTML(s *domain.EmbedSettings) template.HTML {
	safe := r.embed.Sanitize(s.Html)
	style := ""
	if s.Height > 0 {
		style = fmt.Sprintf(` style="height:%dpx"`, s.Height)
	}
	return template.HTML(fmt.Sprintf(`<div class="embed"%s>%s</div>`, style, safe))
}

func (r *Renderer) button(s *domain.ButtonSettings) template.HTML {
	style := s.Style
	if style == "" {
		style = "solid"
	}
	return template.HTML(fmt.Sprintf(
		`<a class="button button--%s" href="%s" rel="noopener noreferrer">%s</a>`,
		esc(style), esc(s.Url), esc(s.Label)))
}

func (r *Renderer) socialLinks(s *domain.SocialLinksSettings) template.HTML {
	var sb strings.Builder
	sb.WriteString(`<ul class="social-links">`)
	for _, l := range s.Links {
		fmt.Fprintf(&sb,
			`<li><a class="social-links__item social-links__item--%s" href="%s" rel="noopener noreferrer">%s</a></li>`,
			esc(l.Platform), esc(l.Url), esc(l.Platform))
	}
	sb.WriteString(`</ul>`)
	return template.HTML(sb.String())
}

func (r *Renderer) calendar(s *domain.CalendarSettings) template.HTML {
	title := s.Title
	if title == "" {
		title = "Book a time"
	}
	return template.HTML(fmt.Sprintf(
		`<a class="calendar calendar--%s" href="%s" rel="noopener noreferrer">%s</a>`,
		esc(s.Provider), esc(s.EventUrl), esc(title)))
}

func (r *Renderer) form(s *domain.FormSettings) template.HTML {
	var sb strings.Builder
	sb.WriteString(`<form class="form" method="post">`)
	if s.Title != "" {
		fmt.Fprintf(&sb, `<h3>%s</h3>`, esc(s.Title))
	}
	for _, f := range s.Fields {
		required := ""
		if f.Required {
			required = " required"
		}
		fmt.Fprintf(&sb, `<label>%s`, esc(f.Label))
		if f.Kind == "textarea" {
			fmt.Fprintf(&sb, `<textarea name="%s"%s></textarea>`, esc(f.Name), required)
		} else {
			kind := f.Kind
			if kind == "" {
				kind = "text"
			}
			fmt.Fprintf(&sb, `<input type="%s" name="%s"%s>`, esc(kind), esc(f.Name), required)
		}
		sb.WriteString(`</label>`)
	}
	label := s.SubmitLabel
	if label == "" {
		label = "Submit"
	}
	fmt.Fprintf(&sb, `<button type="submit">%s</button></form>`, esc(label))
	return template.HTML(sb.String())
}

func (r *Renderer) divider(s *domain.DividerSettings) template.HTML {
	style := s.Style
	if style == "" {
		style = "solid"
	}
	return template.HTML(fmt.Sprintf(`<hr class="divider divider--%s">`, esc(style)))
}

func (r *Renderer) spacer(s *domain.SpacerSettings) template.HTML {
	return template.HTML(fmt.Sprintf(`<div class="spacer" style="height:%dpx"></div>`, s.Height))
}
