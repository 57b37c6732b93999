package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/facultyhub/pubdir/internal/faculty"
	"github.com/facultyhub/pubdir/internal/publication"
	"github.com/facultyhub/pubdir/internal/storage"
)

// maxIDAttempts bounds retries when a generated faculty id collides.
const maxIDAttempts = 10

// Credentials are returned once at registration.
type Credentials struct {
	FacultyID string `json:"facultyId"`
	Password  string `json:"password"`
}

// NameSuggestion is one entry of the search-as-you-type list.
type NameSuggestion struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Register creates a faculty account with a generated id and password.
// The raw password is only ever returned here.
func (s *Service) Register(ctx context.Context) (*faculty.Faculty, Credentials, error) {
	password, err := faculty.GeneratePassword()
	if err != nil {
		return nil, Credentials{}, err
	}
	hash, err := faculty.HashPassword(password)
	if err != nil {
		return nil, Credentials{}, err
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		facultyID, err := faculty.GenerateFacultyID(s.now())
		if err != nil {
			return nil, Credentials{}, err
		}

		f := &faculty.Faculty{
			ID:           uuid.NewString(),
			FacultyID:    facultyID,
			PasswordHash: hash,
		}
		err = s.store.CreateFaculty(ctx, f)
		if errors.Is(err, storage.ErrDuplicate) {
			s.logger.DebugContext(ctx, "faculty id collision, retrying", "faculty_id", facultyID, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, Credentials{}, err
		}

		s.metrics.IncrementFacultyRegistered()
		s.logger.InfoContext(ctx, "faculty registered", "faculty_id", facultyID)
		return f, Credentials{FacultyID: facultyID, Password: password}, nil
	}
	return nil, Credentials{}, fmt.Errorf("no free faculty id after %d attempts", maxIDAttempts)
}

// Login checks credentials and returns the faculty with a signed token.
func (s *Service) Login(ctx context.Context, facultyID, password string) (*faculty.Faculty, string, error) {
	if s.tokens == nil {
		return nil, "", errors.New("login tokens are not configured")
	}
	f, err := s.store.GetFacultyByFacultyID(ctx, strings.TrimSpace(facultyID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", validationError("Faculty not found", err)
	}
	if err != nil {
		return nil, "", err
	}
	if err := faculty.CheckPassword(f.PasswordHash, password); err != nil {
		s.logger.WarnContext(ctx, "login rejected", "faculty_id", f.FacultyID)
		return nil, "", validationError("Invalid password", err)
	}

	token, err := s.tokens.Issue(f.FacultyID, f.Email)
	if err != nil {
		return nil, "", err
	}
	return f, token, nil
}

// CompleteProfile fills in names, email and Scholar link and marks the
// profile complete.
func (s *Service) CompleteProfile(ctx context.Context, facultyID string, p faculty.Profile) (*faculty.Faculty, error) {
	f, err := s.facultyByFacultyID(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, f); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return nil, validationError("First and last name are required", nil)
	}
	if !strings.Contains(p.Email, "@") {
		return nil, validationError("A valid email is required", nil)
	}
	if link := strings.TrimSpace(p.GoogleScholarLink); link != "" {
		if _, err := faculty.ScholarAuthorID(link); err != nil {
			return nil, validationError("Invalid Google Scholar link", err)
		}
	}

	f.ApplyProfile(p)
	err = s.store.UpdateFaculty(ctx, f)
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, validationError("Email is already registered to another faculty member", err)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// UpdatePhoto replaces the profile photo of the faculty with internal id.
// An empty photo leaves the current one in place.
func (s *Service) UpdatePhoto(ctx context.Context, id, photo string) (*faculty.Faculty, error) {
	f, err := s.store.GetFaculty(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFoundError("Faculty not found", err)
	}
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, f); err != nil {
		return nil, err
	}

	if photo = strings.TrimSpace(photo); photo != "" {
		f.ProfilePhoto = photo
	}
	if err := s.store.UpdateFaculty(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// GenerateProfileURL issues a fresh public profile token and returns the
// shareable frontend URL. Any previous token stops working.
func (s *Service) GenerateProfileURL(ctx context.Context, facultyID string) (string, error) {
	f, err := s.facultyByFacultyID(ctx, facultyID)
	if err != nil {
		return "", err
	}
	if err := s.authorize(ctx, f); err != nil {
		return "", err
	}

	token, err := faculty.GenerateProfileToken()
	if err != nil {
		return "", err
	}
	f.PublicProfileToken = token
	if err := s.store.UpdateFaculty(ctx, f); err != nil {
		return "", err
	}
	return faculty.ProfileURL(s.frontendURL, token), nil
}

// PublicProfile resolves a profile token to its faculty and publications.
func (s *Service) PublicProfile(ctx context.Context, token string) (*faculty.Faculty, []publication.Record, error) {
	f, err := s.store.GetFacultyByToken(ctx, strings.TrimSpace(token))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, notFoundError("Invalid profile URL", err)
	}
	if err != nil {
		return nil, nil, err
	}
	pubs, err := s.publicationsOf(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return f, pubs, nil
}

// Search finds the faculty member best matching name and returns their
// publications. Substring matches are tried first on the raw input, then on
// the input rewritten as "First Last" (so "Yu, Timothy" works).
func (s *Service) Search(ctx context.Context, name string) (*faculty.Faculty, []publication.Record, error) {
	q := faculty.ParseNameQuery(name)
	if q.Raw == "" {
		return nil, nil, validationError("Name is required", nil)
	}

	candidates, err := s.store.SearchFaculty(ctx, q.Raw, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(candidates) == 0 {
		if canonical := q.Canonical(); canonical != q.Raw {
			if candidates, err = s.store.SearchFaculty(ctx, canonical, 0); err != nil {
				return nil, nil, err
			}
		}
	}

	best, ok := q.Best(candidates)
	if !ok {
		return nil, nil, notFoundError("Faculty not found", storage.ErrNotFound)
	}
	pubs, err := s.publicationsOf(ctx, &best)
	if err != nil {
		return nil, nil, err
	}
	return &best, pubs, nil
}

// Suggestions returns up to SuggestionLimit names whose first or last name
// contains query.
func (s *Service) Suggestions(ctx context.Context, query string) ([]NameSuggestion, error) {
	out := []NameSuggestion{}
	query = strings.TrimSpace(query)
	if query == "" {
		return out, nil
	}

	list, err := s.store.SuggestFaculty(ctx, query, SuggestionLimit)
	if err != nil {
		return nil, err
	}
	for _, f := range list {
		out = append(out, NameSuggestion{ID: f.ID, FirstName: f.FirstName, LastName: f.LastName})
	}
	return out, nil
}

// Faculty returns the faculty with the given login id.
func (s *Service) Faculty(ctx context.Context, facultyID string) (*faculty.Faculty, error) {
	return s.facultyByFacultyID(ctx, facultyID)
}

func (s *Service) facultyByFacultyID(ctx context.Context, facultyID string) (*faculty.Faculty, error) {
	f, err := s.store.GetFacultyByFacultyID(ctx, strings.TrimSpace(facultyID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFoundError("Faculty not found", err)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// publicationsOf lists a faculty member's publications; a profile without an
// email has none.
func (s *Service) publicationsOf(ctx context.Context, f *faculty.Faculty) ([]publication.Record, error) {
	if f.Email == "" {
		return []publication.Record{}, nil
	}
	return s.store.ListPublications(ctx, f.Email)
}
