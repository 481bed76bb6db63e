// ABOUTME: Partial document patch applied by a shallow top-level merge
// ABOUTME: A set field replaces the whole corresponding field of the current document

package content

// Partial is a patch over a Document. Each non-nil field replaces the
// matching top-level field wholesale; nested values are not merged.
type Partial struct {
	SchoolName      *string       `json:"schoolName,omitempty"`
	ShortName       *string       `json:"shortName,omitempty"`
	Tagline         *string       `json:"tagline,omitempty"`
	Description     *string       `json:"description,omitempty"`
	Address         *string       `json:"address,omitempty"`
	Postal          *string       `json:"postal,omitempty"`
	Phone           *string       `json:"phone,omitempty"`
	ContactEmail    *string       `json:"contactEmail,omitempty"`
	Principal       *string       `json:"principal,omitempty"`
	DeputyPrincipal *string       `json:"deputyPrincipal,omitempty"`
	PassRate        *string       `json:"passRate,omitempty"`
	Stats           *[]Stat       `json:"stats,omitempty"`
	Services        *[]Stream     `json:"services,omitempty"`
	Team            *[]TeamMember `json:"team,omitempty"`
	Sponsors        *[]Sponsor    `json:"sponsors,omitempty"`
	HeroImages      *[]string     `json:"heroImages,omitempty"`
	SchoolImage     *string       `json:"schoolImage,omitempty"`
	UI              *UIPrefs      `json:"ui,omitempty"`
}

// Ptr returns a pointer to v. Handy when building a Partial literal.
func Ptr[T any](v T) *T {
	return &v
}

// Apply returns a new Document with every set field of p replacing the
// corresponding field of base. base is not modified.
func (p Partial) Apply(base Document) Document {
	d := base.Clone()
	set(&d.SchoolName, p.SchoolName)
	set(&d.ShortName, p.ShortName)
	set(&d.Tagline, p.Tagline)
	set(&d.Description, p.Description)
	set(&d.Address, p.Address)
	set(&d.Postal, p.Postal)
	set(&d.Phone, p.Phone)
	set(&d.ContactEmail, p.ContactEmail)
	set(&d.Principal, p.Principal)
	set(&d.DeputyPrincipal, p.DeputyPrincipal)
	set(&d.PassRate, p.PassRate)
	set(&d.SchoolImage, p.SchoolImage)
	set(&d.UI, p.UI)
	setSlice(&d.Stats, p.Stats)
	setSlice(&d.Team, p.Team)
	setSlice(&d.Sponsors, p.Sponsors)
	setSlice(&d.HeroImages, p.HeroImages)
	if p.Services != nil {
		d.Services = cloneStreams(*p.Services)
		if d.Services == nil {
			d.Services = []Stream{}
		}
	}
	return d
}

// Keys lists the wire names of the fields p sets, in schema order.
func (p Partial) Keys() []string {
	var keys []string
	add := func(ok bool, name string) {
		if ok {
			keys = append(keys, name)
		}
	}
	add(p.SchoolName != nil, "schoolName")
	add(p.ShortName != nil, "shortName")
	add(p.Tagline != nil, "tagline")
	add(p.Description != nil, "description")
	add(p.Address != nil, "address")
	add(p.Postal != nil, "postal")
	add(p.Phone != nil, "phone")
	add(p.ContactEmail != nil, "contactEmail")
	add(p.Principal != nil, "principal")
	add(p.DeputyPrincipal != nil, "deputyPrincipal")
	add(p.PassRate != nil, "passRate")
	add(p.Stats != nil, "stats")
	add(p.Services != nil, "services")
	add(p.Team != nil, "team")
	add(p.Sponsors != nil, "sponsors")
	add(p.HeroImages != nil, "heroImages")
	add(p.SchoolImage != nil, "schoolImage")
	add(p.UI != nil, "ui")
	return keys
}

// IsEmpty reports whether p sets no field.
func (p Partial) IsEmpty() bool {
	return len(p.Keys()) == 0
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// setSlice replaces dst with a copy of *v. A set but nil list becomes empty,
// so it is stored as [] and not as null.
func setSlice[T any](dst *[]T, v *[]T) {
	if v == nil {
		return
	}
	if *v == nil {
		*dst = []T{}
		return
	}
	*dst = cloneSlice(*v)
}
