package models

// ExpertField is the specialism of an expert user.
type ExpertField string

const (
	ExpertSoilScience ExpertField = "Soil Science"
	ExpertAgronomy    ExpertField = "Agronomy"
	ExpertIrrigation  ExpertField = "Irrigation"
	ExpertLivestock   ExpertField = "Livestock"
	ExpertPolicy      ExpertField = "Policy"
)

// User is a member profile. Only its owner writes it.
type User struct {
	ID             string      `firestore:"id" json:"id" validate:"required"`
	Name           string      `firestore:"name" json:"name" validate:"required"`
	Email          string      `firestore:"email" json:"email" validate:"required,email"`
	FarmName       string      `firestore:"farmName,omitempty" json:"farmName,omitempty"`
	Organization   string      `firestore:"organization,omitempty" json:"organization,omitempty"`
	Location       string      `firestore:"location" json:"location"`
	CropsGrown     []string    `firestore:"cropsGrown" json:"cropsGrown"`
	LandArea       string      `firestore:"landArea,omitempty" json:"landArea,omitempty"`
	Equipment      []string    `firestore:"equipment,omitempty" json:"equipment,omitempty"`
	Experience     int         `firestore:"experience" json:"experience" validate:"gte=0"`
	Certifications []string    `firestore:"certifications" json:"certifications"`
	ProfilePhoto   string      `firestore:"profilePhoto,omitempty" json:"profilePhoto,omitempty"`
	CoverPhoto     string      `firestore:"coverPhoto,omitempty" json:"coverPhoto,omitempty"`
	Headline       string      `firestore:"headline" json:"headline"`
	Bio            string      `firestore:"bio" json:"bio"`
	IsExpert       bool        `firestore:"isExpert" json:"isExpert"`
	ExpertField    ExpertField `firestore:"expertField,omitempty" json:"expertField,omitempty" validate:"omitempty,oneof='Soil Science' Agronomy Irrigation Livestock Policy"`
}

// ImageField names a profile field that holds an inline image.
type ImageField string

const (
	ProfilePhotoField ImageField = "profilePhoto"
	CoverPhotoField   ImageField = "coverPhoto"
)

// ProfilePatch is a partial profile write. Nil fields are left untouched.
type ProfilePatch struct {
	Name           *string   `json:"name,omitempty" validate:"omitempty,min=1"`
	FarmName       *string   `json:"farmName,omitempty"`
	Organization   *string   `json:"organization,omitempty"`
	Location       *string   `json:"location,omitempty"`
	CropsGrown     *[]string `json:"cropsGrown,omitempty"`
	LandArea       *string   `json:"landArea,omitempty"`
	Equipment      *[]string `json:"equipment,omitempty"`
	Experience     *int      `json:"experience,omitempty" validate:"omitempty,gte=0"`
	Certifications *[]string `json:"certifications,omitempty"`
	ProfilePhoto   *string   `json:"profilePhoto,omitempty"`
	CoverPhoto     *string   `json:"coverPhoto,omitempty"`
	Headline       *string   `json:"headline,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
}

// IsEmpty reports whether the patch would write nothing.
func (p ProfilePatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

// Fields returns the set fields keyed by their document field name.
func (p ProfilePatch) Fields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.FarmName != nil {
		fields["farmName"] = *p.FarmName
	}
	if p.Organization != nil {
		fields["organization"] = *p.Organization
	}
	if p.Location != nil {
		fields["location"] = *p.Location
	}
	if p.CropsGrown != nil {
		fields["cropsGrown"] = *p.CropsGrown
	}
	if p.LandArea != nil {
		fields["landArea"] = *p.LandArea
	}
	if p.Equipment != nil {
		fields["equipment"] = *p.Equipment
	}
	if p.Experience != nil {
		fields["experience"] = *p.Experience
	}
	if p.Certifications != nil {
		fields["certifications"] = *p.Certifications
	}
	if p.ProfilePhoto != nil {
		fields["profilePhoto"] = *p.ProfilePhoto
	}
	if p.CoverPhoto != nil {
		fields["coverPhoto"] = *p.CoverPhoto
	}
	if p.Headline != nil {
		fields["headline"] = *p.Headline
	}
	if p.Bio != nil {
		fields["bio"] = *p.Bio
	}
	return fields
}

// Apply returns u with the patch applied.
func (p ProfilePatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.FarmName != nil {
		u.FarmName = *p.FarmName
	}
	if p.Organization != nil {
		u.Organization = *p.Organization
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.CropsGrown != nil {
		u.CropsGrown = append([]string(nil), (*p.CropsGrown)...)
	}
	if p.LandArea != nil {
		u.LandArea = *p.LandArea
	}
	if p.Equipment != nil {
		u.Equipment = append([]string(nil), (*p.Equipment)...)
	}
	if p.Experience != nil {
		u.Experience = *p.Experience
	}
	if p.Certifications != nil {
		u.Certifications = append([]string(nil), (*p.Certifications)...)
	}
	if p.ProfilePhoto != nil {
		u.ProfilePhoto = *p.ProfilePhoto
	}
	if p.CoverPhoto != nil {
		u.CoverPhoto = *p.CoverPhoto
	}
	if p.Headline != nil {
		u.Headline = *p.Headline
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	return u
}

// ImagePatch returns a patch that sets only the given image field.
func ImagePatch(field ImageField, dataURL string) ProfilePatch {
	switch field {
	case CoverPhotoField:
		return ProfilePatch{CoverPhoto: &dataURL}
	default:
		return ProfilePatch{ProfilePhoto: &dataURL}
	}
}
