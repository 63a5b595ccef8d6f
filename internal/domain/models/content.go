package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Resource identifies one content kind managed by the admin API. Every kind
// maps to exactly one table; unknown slugs never reach the database.
type Resource string

const (
	ResourceHeroSlides    Resource = "hero-slides"
	ResourceBenefitCards  Resource = "benefit-cards"
	ResourceGalleryAlbums Resource = "gallery-albums"
	ResourceGalleryImages Resource = "gallery-images"
	ResourceTestimonials  Resource = "testimonials"
	ResourceInfoCards     Resource = "info-cards"
	ResourceSchedules     Resource = "schedules"
	ResourceFooterLinks   Resource = "footer-links"
	ResourceContacts      Resource = "contacts"
	ResourceSiteSettings  Resource = "site-settings"
	ResourceContactInfo   Resource = "contact-info"
)

type FieldKind string

const (
	FieldText  FieldKind = "text"
	FieldInt   FieldKind = "int"
	FieldBool  FieldKind = "bool"
	FieldURL   FieldKind = "url"
	FieldEmail FieldKind = "email"
	FieldUUID  FieldKind = "uuid"
)

// Field describes one resource-specific column.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
}

// ResourceSpec carries everything the generic handlers need to know about a
// content kind: its table, its column set and its listing semantics.
type ResourceSpec struct {
	Resource Resource
	Table    string

	// Ordered kinds carry an "order" column and are listed ascending by it.
	// Unordered kinds (contacts, singletons) are listed by recency.
	Ordered bool

	// Singleton kinds are ordinary tables read as "latest published row".
	Singleton bool

	Fields []Field

	// ExtendedFields exist only on newer schemas. Queries selecting them must
	// tolerate an undefined-column error and fall back to Fields alone.
	ExtendedFields []Field
}

// FieldNames returns the resource-specific column names, including the
// extended set when requested.
func (s ResourceSpec) FieldNames(extended bool) []string {
	names := make([]string, 0, len(s.Fields)+len(s.ExtendedFields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	if extended {
		for _, f := range s.ExtendedFields {
			names = append(names, f.Name)
		}
	}
	return names
}

// AllFields returns the field specs, extended ones included when requested.
func (s ResourceSpec) AllFields(extended bool) []Field {
	if !extended || len(s.ExtendedFields) == 0 {
		return s.Fields
	}
	all := make([]Field, 0, len(s.Fields)+len(s.ExtendedFields))
	all = append(all, s.Fields...)
	all = append(all, s.ExtendedFields...)
	return all
}

var specs = map[Resource]ResourceSpec{
	ResourceHeroSlides: {
		Resource: ResourceHeroSlides,
		Table:    "hero_slides",
		Ordered:  true,
		Fields: []Field{
			{Name: "image_url", Kind: FieldURL, Required: true},
			{Name: "title", Kind: FieldText},
			{Name: "subtitle", Kind: FieldText},
			{Name: "cta_text", Kind: FieldText},
			{Name: "cta_link", Kind: FieldURL},
		},
	},
	ResourceBenefitCards: {
		Resource: ResourceBenefitCards,
		Table:    "benefit_cards",
		Ordered:  true,
		Fields: []Field{
			{Name: "icon_key", Kind: FieldText, Required: true},
			{Name: "title", Kind: FieldText, Required: true},
			{Name: "description", Kind: FieldText},
		},
	},
	ResourceGalleryAlbums: {
		Resource: ResourceGalleryAlbums,
		Table:    "gallery_albums",
		Ordered:  true,
		Fields: []Field{
			{Name: "title", Kind: FieldText, Required: true},
			{Name: "slug", Kind: FieldText, Required: true},
		},
	},
	ResourceGalleryImages: {
		Resource: ResourceGalleryImages,
		Table:    "gallery_images",
		Ordered:  true,
		Fields: []Field{
			{Name: "album_id", Kind: FieldUUID, Required: true},
			{Name: "url", Kind: FieldURL, Required: true},
			{Name: "alt", Kind: FieldText, Required: true},
			{Name: "caption", Kind: FieldText},
			{Name: "external_link", Kind: FieldURL},
		},
		ExtendedFields: []Field{
			{Name: "video_url", Kind: FieldURL},
			{Name: "video_id", Kind: FieldText},
			{Name: "is_video", Kind: FieldBool},
		},
	},
	ResourceTestimonials: {
		Resource: ResourceTestimonials,
		Table:    "testimonials",
		Ordered:  true,
		Fields: []Field{
			{Name: "name", Kind: FieldText, Required: true},
			{Name: "role", Kind: FieldText},
			{Name: "text", Kind: FieldText, Required: true},
			{Name: "rating", Kind: FieldInt},
		},
	},
	ResourceInfoCards: {
		Resource: ResourceInfoCards,
		Table:    "info_cards",
		Ordered:  true,
		Fields: []Field{
			{Name: "icon_key", Kind: FieldText, Required: true},
			{Name: "title", Kind: FieldText, Required: true},
			{Name: "description", Kind: FieldText},
		},
	},
	ResourceSchedules: {
		Resource: ResourceSchedules,
		Table:    "schedules",
		Ordered:  true,
		Fields: []Field{
			{Name: "title", Kind: FieldText},
			{Name: "description", Kind: FieldText},
			{Name: "footer", Kind: FieldText},
		},
	},
	ResourceFooterLinks: {
		Resource: ResourceFooterLinks,
		Table:    "footer_links",
		Ordered:  true,
		Fields: []Field{
			{Name: "label", Kind: FieldText, Required: true},
			{Name: "url", Kind: FieldURL, Required: true},
			{Name: "category", Kind: FieldText},
		},
	},
	ResourceContacts: {
		Resource: ResourceContacts,
		Table:    "contacts",
		Fields: []Field{
			{Name: "name", Kind: FieldText, Required: true},
			{Name: "phone", Kind: FieldText},
			{Name: "whatsapp_e164", Kind: FieldText},
			{Name: "email", Kind: FieldEmail},
			{Name: "message", Kind: FieldText},
		},
	},
	ResourceSiteSettings: {
		Resource:  ResourceSiteSettings,
		Table:     "site_settings",
		Singleton: true,
		Fields: []Field{
			{Name: "logo_url", Kind: FieldURL},
			{Name: "primary_color", Kind: FieldText},
			{Name: "secondary_color", Kind: FieldText},
			{Name: "accent_color", Kind: FieldText},
			{Name: "background_color", Kind: FieldText},
			{Name: "font_family", Kind: FieldText},
			{Name: "benefits_title", Kind: FieldText},
			{Name: "benefits_subtitle", Kind: FieldText},
			{Name: "gallery_title", Kind: FieldText},
			{Name: "gallery_subtitle", Kind: FieldText},
			{Name: "testimonials_title", Kind: FieldText},
			{Name: "testimonials_subtitle", Kind: FieldText},
			{Name: "info_title", Kind: FieldText},
			{Name: "info_subtitle", Kind: FieldText},
		},
	},
	ResourceContactInfo: {
		Resource:  ResourceContactInfo,
		Table:     "contact_info",
		Singleton: true,
		Fields: []Field{
			{Name: "phone", Kind: FieldText},
			{Name: "whatsapp", Kind: FieldText},
			{Name: "email", Kind: FieldEmail},
			{Name: "address", Kind: FieldText},
			{Name: "address_complement", Kind: FieldText},
			{Name: "address_reference", Kind: FieldText},
			{Name: "gps_coordinates", Kind: FieldURL},
			{Name: "weekday_hours", Kind: FieldText},
			{Name: "saturday_hours", Kind: FieldText},
			{Name: "sunday_hours", Kind: FieldText},
			{Name: "response_time", Kind: FieldText},
			{Name: "instagram", Kind: FieldURL},
			{Name: "facebook", Kind: FieldURL},
			{Name: "linkedin", Kind: FieldURL},
			{Name: "twitter", Kind: FieldURL},
			{Name: "footer_brand_title", Kind: FieldText},
			{Name: "footer_brand_description", Kind: FieldText},
			{Name: "footer_copyright_text", Kind: FieldText},
			{Name: "footer_privacy_policy_text", Kind: FieldText},
			{Name: "footer_terms_of_use_text", Kind: FieldText},
		},
	},
}

// AllResources lists every content kind in payload-assembly order.
var AllResources = []Resource{
	ResourceSiteSettings,
	ResourceHeroSlides,
	ResourceBenefitCards,
	ResourceGalleryAlbums,
	ResourceGalleryImages,
	ResourceTestimonials,
	ResourceInfoCards,
	ResourceContacts,
	ResourceSchedules,
	ResourceFooterLinks,
	ResourceContactInfo,
}

// PublishAllResources is the fixed set touched by the publish-all batch.
// Contacts and schedules are moderated individually and stay out of it.
var PublishAllResources = []Resource{
	ResourceSiteSettings,
	ResourceHeroSlides,
	ResourceBenefitCards,
	ResourceTestimonials,
	ResourceInfoCards,
	ResourceGalleryAlbums,
	ResourceGalleryImages,
	ResourceFooterLinks,
	ResourceContactInfo,
}

// Spec returns the registry entry for a kind.
func Spec(r Resource) (ResourceSpec, bool) {
	s, ok := specs[r]
	return s, ok
}

// ParseResource resolves a URL slug to a registered kind.
func ParseResource(slug string) (ResourceSpec, bool) {
	return Spec(Resource(slug))
}

// Row is one content record. Resource-specific columns live in Fields so a
// single repository serves every kind; the publication columns are typed.
type Row struct {
	ID          uuid.UUID
	Order       *int
	IsPublished bool
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
	Fields      map[string]interface{}
}

// MarshalJSON flattens the resource-specific fields next to the common ones,
// matching the wire shape admin clients expect.
func (r Row) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Fields)+7)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["id"] = r.ID
	if r.Order != nil {
		out["order"] = *r.Order
	}
	out["is_published"] = r.IsPublished
	out["published_at"] = r.PublishedAt
	out["created_at"] = r.CreatedAt
	out["updated_at"] = r.UpdatedAt
	out["deleted_at"] = r.DeletedAt
	return json.Marshal(out)
}

// AlbumID reads the album foreign key off a gallery image row.
func (r Row) AlbumID() (uuid.UUID, bool) {
	v, ok := r.Fields["album_id"]
	if !ok || v == nil {
		return uuid.Nil, false
	}
	switch id := v.(type) {
	case uuid.UUID:
		return id, true
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, false
		}
		return parsed, true
	}
	return uuid.Nil, false
}

// Album is a gallery album row with its published images nested under it.
type Album struct {
	Row
	Images []Row
}

func (a Album) MarshalJSON() ([]byte, error) {
	base, err := a.Row.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(base, &out); err != nil {
		return nil, err
	}
	images := a.Images
	if images == nil {
		images = []Row{}
	}
	out["images"] = images
	return json.Marshal(out)
}

// PagePayload is the aggregated public response, one key per resource kind.
type PagePayload struct {
	SiteSettings  *Row    `json:"site_settings"`
	HeroSlides    []Row   `json:"hero_slides"`
	BenefitCards  []Row   `json:"benefit_cards"`
	GalleryAlbums []Album `json:"gallery_albums"`
	GalleryImages []Row   `json:"gallery_images"`
	Testimonials  []Row   `json:"testimonials"`
	InfoCards     []Row   `json:"info_cards"`
	Contacts      []Row   `json:"contacts"`
	Schedules     []Row   `json:"schedules"`
	FooterLinks   []Row   `json:"footer_links"`
	ContactInfo   *Row    `json:"contact_info"`
}
