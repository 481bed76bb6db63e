// ABOUTME: Default content snapshot used as fallback and merge baseline
// ABOUTME: Every field is populated; each call returns a fresh deep copy

package content

// UI preference defaults.
const (
	DefaultServicesPreviewCount = 6
	DefaultBadgeColor           = "blue"
	DefaultTransitionMs         = 300
)

var defaultDocument = Document{
	SchoolName:      "Riverside Secondary School",
	ShortName:       "Riverside",
	Tagline:         "Learning today, leading tomorrow",
	Description:     "Riverside Secondary School has served the valley since 1962.\n\nWe offer a broad curriculum across science, commerce and the humanities, backed by a strong programme of sport, culture and community service.",
	Address:         "14 River Road, Riverside",
	Postal:          "P.O. Box 2210, Riverside",
	Phone:           "+27 11 555 0142",
	ContactEmail:    "info@riverside-secondary.example",
	Principal:       "Mrs. N. Dlamini",
	DeputyPrincipal: "Mr. T. Mokoena",
	PassRate:        "96%",
	Stats: []Stat{
		{Label: "Learners", Value: "1 200+"},
		{Label: "Educators", Value: "58"},
		{Label: "Matric pass rate", Value: "96%"},
		{Label: "Years of excellence", Value: "60+"},
	},
	Services: []Stream{
		{
			Category: "Science",
			Subjects: []Subject{
				{Name: "Mathematics", PassMark: DefaultPassMark},
				{Name: "Physical Sciences", PassMark: DefaultPassMark},
				{Name: "Life Sciences", PassMark: DefaultPassMark},
			},
		},
		{
			Category: "Commerce",
			Subjects: []Subject{
				{Name: "Accounting", PassMark: DefaultPassMark},
				{Name: "Business Studies", PassMark: DefaultPassMark},
				{Name: "Economics", PassMark: DefaultPassMark},
			},
		},
		{
			Category: "Humanities",
			Subjects: []Subject{
				{Name: "History", PassMark: DefaultPassMark},
				{Name: "Geography", PassMark: DefaultPassMark},
				{Name: "English Home Language", PassMark: DefaultPassMark},
			},
		},
	},
	Team: []TeamMember{
		{Name: "Mrs. N. Dlamini", Role: "Principal", Initials: "ND", ImagePosition: "center"},
		{Name: "Mr. T. Mokoena", Role: "Deputy Principal", Initials: "TM", ImagePosition: "center"},
		{Name: "Ms. L. van Wyk", Role: "Head of Sciences", Initials: "LW", ImagePosition: "center"},
		{Name: "Mr. S. Naidoo", Role: "Head of Commerce", Initials: "SN", ImagePosition: "center"},
	},
	Sponsors: []Sponsor{
		{Name: "Valley Community Trust", URL: "https://valleytrust.example"},
		{Name: "Riverside Old Scholars", URL: "https://oldscholars.example"},
	},
	HeroImages: []string{
		"https://images.riverside-secondary.example/hero/campus.jpg",
		"https://images.riverside-secondary.example/hero/assembly.jpg",
		"https://images.riverside-secondary.example/hero/sports-day.jpg",
	},
	SchoolImage: "https://images.riverside-secondary.example/school.jpg",
	UI: UIPrefs{
		ServicesPreviewCount: DefaultServicesPreviewCount,
		BadgeColor:           DefaultBadgeColor,
		TransitionMs:         DefaultTransitionMs,
	},
}

// Default returns the fully populated default document. The package-level
// baseline is never handed out, so callers may modify the result freely.
func Default() Document {
	return defaultDocument.Clone()
}
