package domain

import (
	"strings"
	"time"
)

// Profile is the per-user record collected during onboarding.
// ID equals the identity provider's user id.
type Profile struct {
	ID            string    `json:"id"`
	FullName      *string   `json:"full_name"`
	JobTitle      *string   `json:"job_title"`
	Company       *string   `json:"company"`
	Bio           *string   `json:"bio"`
	Location      *string   `json:"location"`
	Hobbies       []string  `json:"hobbies"`
	Passions      *string   `json:"passions"`
	PeopleToMeet  *string   `json:"people_to_meet"`
	RoleAtCompany *string   `json:"role_at_company"`
	MyersBriggs   *string   `json:"myers_briggs"`
	Enneagram     *string   `json:"enneagram"`
	AvatarURL     *string   `json:"avatar_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Required profile columns, in the order they are reported when missing.
const (
	FieldFullName = "full_name"
	FieldJobTitle = "job_title"
	FieldCompany  = "company"
	FieldLocation = "location"
)

// RequiredProfileFields lists the columns a profile needs before the
// onboarding survey can start.
var RequiredProfileFields = []string{FieldFullName, FieldJobTitle, FieldCompany, FieldLocation}

// MissingRequiredFields returns the required fields that are nil or blank
// after trimming whitespace.
func (p *Profile) MissingRequiredFields() []string {
	values := map[string]*string{
		FieldFullName: p.FullName,
		FieldJobTitle: p.JobTitle,
		FieldCompany:  p.Company,
		FieldLocation: p.Location,
	}

	var missing []string
	for _, field := range RequiredProfileFields {
		if isBlank(values[field]) {
			missing = append(missing, field)
		}
	}
	return missing
}

// IsComplete reports whether every required field is present.
func (p *Profile) IsComplete() bool {
	return len(p.MissingRequiredFields()) == 0
}

// EmbeddingText builds the free text sent to the embedding service.
func (p *Profile) EmbeddingText() (hobbies, about string) {
	hobbies = strings.Join(p.Hobbies, ", ")

	parts := make([]string, 0, 3)
	for _, v := range []*string{p.Passions, p.PeopleToMeet, p.RoleAtCompany} {
		if !isBlank(v) {
			parts = append(parts, strings.TrimSpace(*v))
		}
	}
	return hobbies, strings.Join(parts, ". ")
}

func isBlank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}

// UpdateProfileRequest is a partial profile update. Nil fields are left untouched.
type UpdateProfileRequest struct {
	FullName      *string   `json:"full_name" binding:"omitempty,max=200"`
	JobTitle      *string   `json:"job_title" binding:"omitempty,max=200"`
	Company       *string   `json:"company" binding:"omitempty,max=200"`
	Bio           *string   `json:"bio" binding:"omitempty,max=2000"`
	Location      *string   `json:"location" binding:"omitempty,max=200"`
	Hobbies       *[]string `json:"hobbies" binding:"omitempty,max=20,dive,max=100"`
	Passions      *string   `json:"passions" binding:"omitempty,max=2000"`
	PeopleToMeet  *string   `json:"people_to_meet" binding:"omitempty,max=2000"`
	RoleAtCompany *string   `json:"role_at_company" binding:"omitempty,max=2000"`
	MyersBriggs   *string   `json:"myers_briggs" binding:"omitempty,mbti"`
	Enneagram     *string   `json:"enneagram" binding:"omitempty,max=50"`
	AvatarURL     *string   `json:"avatar_url" binding:"omitempty,url"`
}

// Apply copies every non-nil field of the request onto the profile.
func (r *UpdateProfileRequest) Apply(p *Profile) {
	set := func(dst **string, src *string) {
		if src != nil {
			v := *src
			*dst = &v
		}
	}
	set(&p.FullName, r.FullName)
	set(&p.JobTitle, r.JobTitle)
	set(&p.Company, r.Company)
	set(&p.Bio, r.Bio)
	set(&p.Location, r.Location)
	set(&p.Passions, r.Passions)
	set(&p.PeopleToMeet, r.PeopleToMeet)
	set(&p.RoleAtCompany, r.RoleAtCompany)
	set(&p.MyersBriggs, r.MyersBriggs)
	set(&p.Enneagram, r.Enneagram)
	set(&p.AvatarURL, r.AvatarURL)
	if r.Hobbies != nil {
		p.Hobbies = normalizeHobbies(*r.Hobbies)
	}
}

// normalizeHobbies trims entries and drops blanks and duplicates, keeping order.
func normalizeHobbies(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, h := range in {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
