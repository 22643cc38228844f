package domain

import (
	"encoding/json"
	"sort"
	"time"
)

type Privacy string

const (
	PrivacyPublic   Privacy = "public"
	PrivacyUnlisted Privacy = "unlisted"
	PrivacyPrivate  Privacy = "private"
	PrivacyPassword Privacy = "password"
)

func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyUnlisted, PrivacyPrivate, PrivacyPassword:
		return true
	}
	return false
}

// Theme is a value object, immutable by replacement: updates produce a new
// value merged over the old one (see Merge).
type Theme struct {
	Background     string `json:"background,omitempty"` // color or gradient descriptor
	PrimaryColor   string `json:"primary_color,omitempty"`
	TextColor      string `json:"text_color,omitempty"`
	CardBackground string `json:"card_background,omitempty"`
	CardBorder     string `json:"card_border,omitempty"`
	BorderRadius   string `json:"border_radius,omitempty" validate:"omitempty,oneof=none sm md lg full"`
	FontHeading    string `json:"font_heading,omitempty"`
	FontBody       string `json:"font_body,omitempty"`
}

// Merge returns a new theme with the patch's fields laid over the receiver.
func (t Theme) Merge(patch json.RawMessage) (Theme, error) {
	merged := t
	if err := json.Unmarshal(patch, &merged); err != nil {
		return t, err
	}
	return merged, nil
}

type Seo struct {
	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	OgImage         string `json:"og_image,omitempty"`
}

// AnalyticsSummary is the denormalized counter pair shown to the owner.
type AnalyticsSummary struct {
	Views  int64 `json:"views"`
	Clicks int64 `json:"clicks"`
}

// Board is the aggregate root. PasswordHash is excluded from every JSON
// payload; only the storage layer reads it.
type Board struct {
	Id            BoardId          `json:"id"`
	Slug          BoardSlug        `json:"slug"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	OwnerId       UserId           `json:"owner_id"`
	OwnerUsername Username         `json:"owner_username"`
	Collaborators Collaborators    `json:"collaborators,omitempty"`
	Blocks        []Block          `json:"blocks"`
	Layout        string           `json:"layout,omitempty"`
	Theme         Theme            `json:"theme"`
	Privacy       Privacy          `json:"privacy"`
	PasswordHash  string           `json:"-"`
	Seo           Seo              `json:"seo"`
	Analytics     AnalyticsSummary `json:"analytics"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Clone returns a structurally independent copy of the board.
func (b Board) Clone() Board {
	b.Blocks = CloneBlocks(b.Blocks)
	b.Collaborators = append(Collaborators(nil), b.Collaborators...)
	return b
}

// SortedBlocks returns the blocks ordered for display. Order values may have
// gaps (delete does not renumber), so render paths always sort by Order and
// never rely on array position.
func (b *Board) SortedBlocks() []Block {
	blocks := append([]Block(nil), b.Blocks...)
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Order < blocks[j].Order })
	return blocks
}

// FindBlock returns the index of the block with the given id, or -1.
func (b *Board) FindBlock(id BlockId) int {
	for i := range b.Blocks {
		if b.Blocks[i].Id == id {
			return i
		}
	}
	return -1
}

// HasCollaborator reports whether username is listed on the board.
func (b *Board) HasCollaborator(username Username) bool {
	for _, c := range b.Collaborators {
		if c == username {
			return true
		}
	}
	return false
}

// PublicBoard is the payload served to non-owner visitors: invisible blocks
// are dropped and nothing password-related is present at the type level.
type PublicBoard struct {
	Id            BoardId   `json:"id"`
	Slug          BoardSlug `json:"slug"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	OwnerUsername Username  `json:"owner_username"`
	Blocks        []Block   `json:"blocks"`
	Layout        string    `json:"layout,omitempty"`
	Theme         Theme     `json:"theme"`
	Seo           Seo       `json:"seo"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PublicView projects the board for public rendering.
func (b *Board) PublicView() PublicBoard {
	visible := make([]Block, 0, len(b.Blocks))
	for _, blk := range b.SortedBlocks() {
		if blk.Visible {
			visible = append(visible, blk.Clone())
		}
	}
	return PublicBoard{
		Id:            b.Id,
		Slug:          b.Slug,
		Title:         b.Title,
		Description:   b.Description,
		OwnerUsername: b.OwnerUsername,
		Blocks:        visible,
		Layout:        b.Layout,
		Theme:         b.Theme,
		Seo:           b.Seo,
		UpdatedAt:     b.UpdatedAt,
	}
}

// BoardPatch is a partial metadata update (title/description/theme/privacy
// edits that don't go through block operations). Theme and Seo patches are
// merged field-wise over the current values.
type BoardPatch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Slug        *BoardSlug      `json:"slug,omitempty"`
	Layout      *string         `json:"layout,omitempty"`
	Privacy     *Privacy        `json:"privacy,omitempty"`
	Theme       json.RawMessage `json:"theme,omitempty"`
	Seo         json.RawMessage `json:"seo,omitempty"`
}

// Apply shallow-merges the patch onto the board. PasswordHash is never
// touched here; privacy password changes go through the board service.
func (p BoardPatch) Apply(b *Board) error {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Slug != nil {
		b.Slug = *p.Slug
	}
	if p.Layout != nil {
		b.Layout = *p.Layout
	}
	if p.Privacy != nil {
		b.Privacy = *p.Privacy
	}
	if len(p.Theme) > 0 {
		merged, err := b.Theme.Merge(p.Theme)
		if err != nil {
			return err
		}
		b.Theme = merged
	}
	if len(p.Seo) > 0 {
		seo := b.Seo
		if err := json.Unmarshal(p.Seo, &seo); err != nil {
			return err
		}
		b.Seo = seo
	}
	b.UpdatedAt = time.Now().UTC()
	return nil
}
