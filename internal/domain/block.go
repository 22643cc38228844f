package domain

import (
	"encoding/json"
	"fmt"
)

type BlockType string

const (
	BlockLink        BlockType = "link"
	BlockText        BlockType = "text"
	BlockRichText    BlockType = "richtext"
	BlockImage       BlockType = "image"
	BlockVideo       BlockType = "video"
	BlockEmbed       BlockType = "embed"
	BlockButton      BlockType = "button"
	BlockSocialLinks BlockType = "social-links"
	BlockCalendar    BlockType = "calendar"
	BlockForm        BlockType = "form"
	BlockDivider     BlockType = "divider"
	BlockSpacer      BlockType = "spacer"
)

// BlockTypes lists every valid variant tag.
var BlockTypes = []BlockType{
	BlockLink, BlockText, BlockRichText, BlockImage, BlockVideo, BlockEmbed,
	BlockButton, BlockSocialLinks, BlockCalendar, BlockForm, BlockDivider, BlockSpacer,
}

// BlockSettings is the variant payload of a Block. The marker method seals the
// interface so the variant set stays closed: adding a new block type requires
// touching NewBlockSettings, CloneSettings and the renderer dispatch, all of
// which reject unknown tags.
type BlockSettings interface {
	blockSettings()
}

type LinkSettings struct {
	Url         string `json:"url" validate:"required,url"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty" validate:"omitempty,url"`
}

type TextSettings struct {
	Text  string `json:"text"`
	Align string `json:"align,omitempty" validate:"omitempty,oneof=left center right"`
}

type RichTextSettings struct {
	Markdown string `json:"markdown"`
}

type ImageSettings struct {
	Url     string `json:"url" validate:"required,url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
	LinkUrl string `json:"link_url,omitempty" validate:"omitempty,url"`
}

type VideoSettings struct {
	Url      string `json:"url" validate:"required,url"`
	Caption  string `json:"caption,omitempty"`
	Autoplay bool   `json:"autoplay,omitempty"`
}

type EmbedSettings struct {
	Html   string `json:"html" validate:"required"`
	Height int    `json:"height,omitempty" validate:"omitempty,min=0"`
}

type ButtonSettings struct {
	Label string `json:"label" validate:"required"`
	Url   string `json:"url" validate:"required,url"`
	Style string `json:"style,omitempty" validate:"omitempty,oneof=solid outline ghost"`
}

type SocialLink struct {
	Platform string `json:"platform" validate:"required"`
	Url      string `json:"url" validate:"required,url"`
}

type SocialLinksSettings struct {
	Links []SocialLink `json:"links" validate:"dive"`
}

type CalendarSettings struct {
	Provider string `json:"provider" validate:"required,oneof=calendly cal google"`
	EventUrl string `json:"event_url" validate:"required,url"`
	Title    string `json:"title,omitempty"`
}

type FormField struct {
	Name     string `json:"name" validate:"required"`
	Label    string `json:"label" validate:"required"`
	Kind     string `json:"kind" validate:"required,oneof=text email textarea checkbox"`
	Required bool   `json:"required,omitempty"`
}

type FormSettings struct {
	Title       string      `json:"title,omitempty"`
	Fields      []FormField `json:"fields" validate:"required,min=1,dive"`
	SubmitLabel string      `json:"submit_label,omitempty"`
	NotifyEmail string      `json:"notify_email,omitempty" validate:"omitempty,email"`
}

type DividerSettings struct {
	Style string `json:"style,omitempty" validate:"omitempty,oneof=solid dashed dotted"`
}

type SpacerSettings struct {
	Height int `json:"height" validate:"required,min=4,max=320"`
}

func (*LinkSettings) blockSettings()        {}
func (*TextSettings) blockSettings()        {}
func (*RichTextSettings) blockSettings()    {}
func (*ImageSettings) blockSettings()       {}
func (*VideoSettings) blockSettings()       {}
func (*EmbedSettings) blockSettings()       {}
func (*ButtonSettings) blockSettings()      {}
func (*SocialLinksSettings) blockSettings() {}
func (*CalendarSettings) blockSettings()    {}
func (*FormSettings) blockSettings()        {}
func (*DividerSettings) blockSettings()     {}
func (*SpacerSettings) blockSettings()      {}

// NewBlockSettings returns the zero settings value for a variant tag.
// Unknown tags are rejected here, which is the single entry point every
// decode path goes through.
func NewBlockSettings(t BlockType) (BlockSettings, error) {
	switch t {
	case BlockLink:
		return &LinkSettings{}, nil
	case BlockText:
		return &TextSettings{}, nil
	case BlockRichText:
		return &RichTextSettings{}, nil
	case BlockImage:
		return &ImageSettings{}, nil
	case BlockVideo:
		return &VideoSettings{}, nil
	case BlockEmbed:
		return &EmbedSettings{}, nil
	case BlockButton:
		return &ButtonSettings{}, nil
	case BlockSocialLinks:
		return &SocialLinksSettings{}, nil
	case BlockCalendar:
		return &CalendarSettings{}, nil
	case BlockForm:
		return &FormSettings{}, nil
	case BlockDivider:
		return &DividerSettings{}, nil
	case BlockSpacer:
		return &SpacerSettings{}, nil
	default:
		return nil, fmt.Errorf("unknown block type %q", t)
	}
}

// CloneSettings returns an independent copy of a settings value.
// Slices are copied so a clone never aliases the original.
func CloneSettings(s BlockSettings) BlockSettings {
	switch v := s.(type) {
	case *LinkSettings:
		c := *v
		return &c
	case *TextSettings:
		c := *v
		return &c
	case *RichTextSettings:
		c := *v
		return &c
	case *ImageSettings:
		c := *v
		return &c
	case *VideoSettings:
		c := *v
		return &c
	case *EmbedSettings:
		c := *v
		return &c
	case *ButtonSettings:
		c := *v
		return &c
	case *SocialLinksSettings:
		c := *v
		c.Links = append([]SocialLink(nil), v.Links...)
		return &c
	case *CalendarSettings:
		c := *v
		return &c
	case *FormSettings:
		c := *v
		c.Fields = append([]FormField(nil), v.Fields...)
		return &c
	case *DividerSettings:
		c := *v
		return &c
	case *SpacerSettings:
		c := *v
		return &c
	case nil:
		return nil
	default:
		// unreachable: the interface is sealed
		panic(fmt.Sprintf("unhandled block settings %T", s))
	}
}

// Block is one content unit of a board. Id and Type are immutable after
// creation; Order defines display position and is only guaranteed contiguous
// right after a reorder.
type Block struct {
	Id       BlockId
	Type     BlockType
	Order    int
	Visible  bool
	Settings BlockSettings
}

type blockEnvelope struct {
	Id       BlockId         `json:"id"`
	Type     BlockType       `json:"type"`
	Order    int             `json:"order"`
	Visible  bool            `json:"visible"`
	Settings json.RawMessage `json:"settings"`
}

func (b Block) MarshalJSON() ([]byte, error) {
	settings, err := json.Marshal(b.Settings)
	if err != nil {
		return nil, err
	}
	return json.Marshal(blockEnvelope{
		Id:       b.Id,
		Type:     b.Type,
		Order:    b.Order,
		Visible:  b.Visible,
		Settings: settings,
	})
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var env blockEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	settings, err := NewBlockSettings(env.Type)
	if err != nil {
		return err
	}
	if len(env.Settings) > 0 {
		if err := json.Unmarshal(env.Settings, settings); err != nil {
			return fmt.Errorf("decode %s settings: %w", env.Type, err)
		}
	}
	b.Id = env.Id
	b.Type = env.Type
	b.Order = env.Order
	b.Visible = env.Visible
	b.Settings = settings
	return nil
}

// Clone returns a structurally independent copy of the block.
func (b Block) Clone() Block {
	b.Settings = CloneSettings(b.Settings)
	return b
}

// CloneBlocks deep-copies a block collection. Used by history snapshots,
// which must never alias the live slice.
func CloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// BlockPatch is a partial update applied to an existing block. Type is
// deliberately absent: the variant tag never changes after creation.
// Settings fields left out of the patch keep their current values.
type BlockPatch struct {
	Order    *int            `json:"order,omitempty"`
	Visible  *bool           `json:"visible,omitempty"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// Apply shallow-merges the patch onto the block.
func (p BlockPatch) Apply(b *Block) error {
	if p.Order != nil {
		b.Order = *p.Order
	}
	if p.Visible != nil {
		b.Visible = *p.Visible
	}
	if len(p.Settings) > 0 {
		// Unmarshal into a clone first so a malformed patch can't leave the
		// block half-merged, then into the existing values: absent fields
		// keep what is already there.
		merged := CloneSettings(b.Settings)
		if err := json.Unmarshal(p.Settings, merged); err != nil {
			return fmt.Errorf("merge %s settings: %w", b.Type, err)
		}
		b.Settings = merged
	}
	return nil
}
