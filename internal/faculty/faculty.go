// Package faculty defines the faculty profile that publications are attributed
// to, along with credential and public-profile token handling.
package faculty

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultPhoto is the avatar used until a faculty member uploads one.
const DefaultPhoto = "default-avatar.png"

// Faculty is a registered faculty member.
type Faculty struct {
	ID                 string    `json:"_id"`
	FacultyID          string    `json:"facultyId"`
	PasswordHash       string    `json:"-"`
	FirstName          string    `json:"firstName,omitempty"`
	LastName           string    `json:"lastName,omitempty"`
	FullName           string    `json:"fullName,omitempty"`
	Email              string    `json:"email,omitempty"`
	ProfilePhoto       string    `json:"profilePhoto"`
	IsProfileComplete  bool      `json:"isProfileComplete"`
	PublicProfileToken string    `json:"publicProfileToken,omitempty"`
	GoogleScholarLink  string    `json:"googleScholarLink,omitempty"`
	CreatedAt          time.Time `json:"createdAt,omitzero"`
	UpdatedAt          time.Time `json:"updatedAt,omitzero"`
}

// Profile is the data a faculty member supplies to complete registration.
type Profile struct {
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	GoogleScholarLink string `json:"googleScholarLink"`
}

// ApplyProfile copies a completed profile onto f and marks it complete.
func (f *Faculty) ApplyProfile(p Profile) {
	f.FirstName = strings.TrimSpace(p.FirstName)
	f.LastName = strings.TrimSpace(p.LastName)
	f.Email = strings.TrimSpace(p.Email)
	f.GoogleScholarLink = strings.TrimSpace(p.GoogleScholarLink)
	f.FullName = BuildFullName(f.FirstName, f.LastName)
	f.IsProfileComplete = true
}

// BuildFullName joins first and last name with a single space.
func BuildFullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// Errors returned while resolving a Google Scholar link.
var (
	ErrNoScholarLink      = errors.New("google scholar link not provided")
	ErrInvalidScholarLink = errors.New("invalid google scholar link")
)

// ScholarAuthorID extracts the author id from a Google Scholar profile link,
// e.g. https://scholar.google.com/citations?user=AbC123&hl=en -> AbC123.
func ScholarAuthorID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", ErrNoScholarLink
	}

	u, err := url.Parse(link)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidScholarLink, link)
	}

	user := u.Query().Get("user")
	if user == "" {
		return "", fmt.Errorf("%w: no user parameter in %q", ErrInvalidScholarLink, link)
	}
	return user, nil
}

// ProfileURL builds the public profile address served by the frontend.
func ProfileURL(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/public-profile/" + token
}
