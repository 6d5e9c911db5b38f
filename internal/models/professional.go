package models

import (
	"strings"
	"time"
)

// Fixed professional type identifiers.
const (
	TypeMentalHealth = "1"
	TypeLegal        = "2"
	TypeMedical      = "3"
	TypePlacement    = "4"
	TypePathology    = "5"
	TypePharmacy     = "6"
)

const (
	VerificationVerified = "verified"
	VerificationPending  = "pending"
)

// Professional is the canonical view of a document in the professionals collection.
type Professional struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	FirstName          string     `json:"firstName,omitempty"`
	LastName           string     `json:"lastName,omitempty"`
	Category           string     `json:"category,omitempty"`
	Specialization     string     `json:"specialization"`
	ProfessionalTypeID string     `json:"professionalTypeId,omitempty"`
	TypeLabel          string     `json:"typeLabel,omitempty"`
	Rating             *float64   `json:"rating,omitempty"`
	Price              *float64   `json:"price,omitempty"`
	PriceText          string     `json:"priceText"`
	YearsOfExperience  *int       `json:"yearsOfExperience,omitempty"`
	VerificationStatus string     `json:"verificationStatus,omitempty"`
	Location           string     `json:"location,omitempty"`
	Languages          []string   `json:"languages,omitempty"`
	OnlineAvailable    bool       `json:"onlineAvailable"`
	InPersonAvailable  bool       `json:"inPersonAvailable"`
	NextAvailable      string     `json:"nextAvailable,omitempty"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
}

const (
	defaultProfessionalName = "Professional"
	defaultSpecialization   = "General practice"
	defaultPriceText        = "Contact for price"
)

// NormalizeProfessional maps a stored professional document onto Professional.
func NormalizeProfessional(id string, raw map[string]interface{}) Professional {
	p := Professional{
		ID:                 id,
		FirstName:          firstString(raw, "first_name", "firstName"),
		LastName:           firstString(raw, "last_name", "lastName"),
		Category:           firstString(raw, "category"),
		ProfessionalTypeID: firstString(raw, "professional_type_id", "professionalTypeId"),
		Rating:             firstNumberPtr(raw, "rating", "average_rating"),
		Price:              firstNumberPtr(raw, "price", "consultation_fee", "rate"),
		YearsOfExperience:  firstIntPtr(raw, "years_of_experience", "experience", "experience_years"),
		VerificationStatus: firstString(raw, "verification_status", "verificationStatus"),
		Location:           firstString(raw, "location", "address", "city"),
		Languages:          stringList(raw, "languages", "languages_spoken"),
		OnlineAvailable:    firstBool(raw, "online_consultation", "available_online", "is_online"),
		InPersonAvailable:  firstBool(raw, "in_person", "available_in_person"),
		NextAvailable:      firstString(raw, "next_available", "nextAvailable"),
		CreatedAt:          firstTimePtr(raw, "createdAt", "created_at"),
	}

	p.Name = firstString(raw, "name", "full_name", "displayName")
	if p.Name == "" {
		p.Name = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	if p.Name == "" {
		p.Name = defaultProfessionalName
	}

	p.Specialization = firstString(raw, "specialization", "specialty", "category")
	if p.Specialization == "" {
		p.Specialization = defaultSpecialization
	}

	p.PriceText = firstString(raw, "price", "consultation_fee", "rate")
	if p.PriceText == "" || p.PriceText == "0" {
		p.PriceText = defaultPriceText
	}

	return p
}

// ProfessionalType maps a type identifier to its display label.
type ProfessionalType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// NormalizeProfessionalType prefers an explicit id field over the document id,
// since the professionals collection references the former.
func NormalizeProfessionalType(docID string, raw map[string]interface{}) ProfessionalType {
	t := ProfessionalType{
		ID:   firstString(raw, "id", "type_id", "professional_type_id"),
		Name: firstString(raw, "name", "type_name", "slug"),
	}
	if t.ID == "" {
		t.ID = docID
	}
	t.Label = firstString(raw, "label", "display_name", "displayName", "name")
	if t.Label == "" {
		t.Label = t.Name
	}
	return t
}

// Specialization is an entry of the specializations collection.
type Specialization struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	ProfessionalTypeID string `json:"professionalTypeId,omitempty"`
	IsActive           bool   `json:"isActive"`
}

func NormalizeSpecialization(id string, raw map[string]interface{}) Specialization {
	return Specialization{
		ID:                 id,
		Name:               firstString(raw, "name", "title"),
		Description:        text(raw, "description"),
		ProfessionalTypeID: firstString(raw, "professional_type_id", "professionalTypeId"),
		IsActive:           firstBool(raw, "isActive", "is_active"),
	}
}

// AvailabilitySlot is one bookable window of a professional.
type AvailabilitySlot struct {
	ID             string     `json:"id"`
	ProfessionalID string     `json:"professionalId"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	IsBooked       bool       `json:"isBooked"`
	Mode           string     `json:"mode,omitempty"`
}

func NormalizeAvailabilitySlot(id string, raw map[string]interface{}) AvailabilitySlot {
	return AvailabilitySlot{
		ID:             id,
		ProfessionalID: firstString(raw, "professional_id", "professionalId"),
		StartDate:      firstTimePtr(raw, "start_date", "startDate"),
		EndDate:        firstTimePtr(raw, "end_date", "endDate"),
		IsBooked:       firstBool(raw, "is_booked", "isBooked"),
		Mode:           firstString(raw, "mode", "consultation_mode"),
	}
}
