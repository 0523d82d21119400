package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/user"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/http/handlers"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/storage"
)

type fakeUsersRepo struct {
	getFn           func(ctx context.Context, id string) (user.User, error)
	setVerifiedFn   func(ctx context.Context, id string, verified bool) (user.User, error)
	setProfilePicFn func(ctx context.Context, id, path string) (user.User, error)
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{ID: id, Name: "Test Student", Role: user.RoleStudent}, nil
}

func (f *fakeUsersRepo) SetIDVerified(ctx context.Context, id string, verified bool) (user.User, error) {
	if f.setVerifiedFn != nil {
		return f.setVerifiedFn(ctx, id, verified)
	}
	return user.User{ID: id, IsIDVerified: verified}, nil
}

func (f *fakeUsersRepo) SetProfilePicture(ctx context.Context, id, path string) (user.User, error) {
	if f.setProfilePicFn != nil {
		return f.setProfilePicFn(ctx, id, path)
	}
	return user.User{ID: id, ProfilePicture: &path}, nil
}

func TestProfileHandler(t *testing.T) {
	userID := newUUID()

	repo := &fakeUsersRepo{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			if id != userID {
				return user.User{}, user.ErrNotFound
			}
			return user.User{ID: id, Name: "Test Student", Email: "student@example.com", PasswordHash: "secret-hash"}, nil
		},
	}

	h := handlers.NewUsersHandler(repo, nil, nil)
	r := setupRouterAs(http.MethodGet, "/api/users/profile", userID, user.RoleStudent, h.Profile)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/profile", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if strings.Contains(w.Body.String(), "secret-hash") {
		t.Fatal("password hash leaked into the profile response")
	}

	var resp user.User
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.ID != userID {
		t.Fatalf("profile for %q, want %q", resp.ID, userID)
	}
}

func TestVerifyStudentIDHandler(t *testing.T) {
	proctorID := newUUID()
	studentID := newUUID()

	tests := []struct {
		name           string
		path           string
		repoSetUp      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			path: "/api/users/" + studentID + "/verify-id",
			repoSetUp: func(f *fakeUsersRepo) {
				f.setVerifiedFn = func(ctx context.Context, id string, verified bool) (user.User, error) {
					if !verified {
						t.Error("expected verified=true")
					}
					if id != studentID {
						t.Errorf("verified %q, want %q", id, studentID)
					}
					return user.User{ID: id, IsIDVerified: true}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "unknown_user",
			path: "/api/users/" + newUUID() + "/verify-id",
			repoSetUp: func(f *fakeUsersRepo) {
				f.setVerifiedFn = func(ctx context.Context, id string, verified bool) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "malformed_id",
			path:           "/api/users/not-a-uuid/verify-id",
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := handlers.NewUsersHandler(repo, nil, nil)
			r := setupRouterAs(http.MethodPatch, "/api/users/:id/verify-id", proctorID, user.RoleProctor, h.VerifyStudentID)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, tt.path, nil))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// a minimal valid PNG header, enough for content sniffing
var pngHead = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	return buf, mw.FormDataContentType()
}

func TestUploadProfilePictureHandler(t *testing.T) {
	userID := newUUID()

	uploads, err := storage.NewUploadStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name           string
		field          string
		content        []byte
		wantStatusCode int
	}{
		{
			name:           "png_accepted",
			field:          "profilePic",
			content:        append(append([]byte{}, pngHead...), bytes.Repeat([]byte{0}, 64)...),
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "text_rejected",
			field:          "profilePic",
			content:        []byte("definitely not an image"),
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "wrong_field_name",
			field:          "avatar",
			content:        pngHead,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			var recordedPath string

			repo := &fakeUsersRepo{
				setProfilePicFn: func(ctx context.Context, id, path string) (user.User, error) {
					recordedPath = path
					return user.User{ID: id, ProfilePicture: &path}, nil
				},
			}

			h := handlers.NewUsersHandler(repo, uploads, nil)
			r := setupRouterAs(http.MethodPost, "/api/users/profile-picture", userID, user.RoleStudent, h.UploadProfilePicture)

			body, contentType := multipartBody(t, tt.field, "me.png", tt.content)

			req := httptest.NewRequest(http.MethodPost, "/api/users/profile-picture", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				want := "/uploads/profile-pics/profilePic-" + userID + ".png"
				if recordedPath != want {
					t.Fatalf("recorded path %q, want %q", recordedPath, want)
				}
				if !strings.Contains(w.Body.String(), want) {
					t.Fatalf("response missing file path: %s", w.Body.String())
				}
			}
		})
	}
}

func TestUploadProfilePictureTooLarge(t *testing.T) {
	userID := newUUID()

	uploads, err := storage.NewUploadStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	h := handlers.NewUsersHandler(&fakeUsersRepo{}, uploads, nil)
	r := setupRouterAs(http.MethodPost, "/api/users/profile-picture", userID, user.RoleStudent, h.UploadProfilePicture)

	big := append(append([]byte{}, pngHead...), bytes.Repeat([]byte{0}, storage.MaxUploadBytes)...)
	body, contentType := multipartBody(t, "profilePic", "huge.png", big)

	req := httptest.NewRequest(http.MethodPost, "/api/users/profile-picture", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400, body=%s", w.Code, w.Body.String())
	}

	if !strings.Contains(w.Body.String(), "file_too_large") {
		t.Fatalf("expected file_too_large code, body=%s", w.Body.String())
	}
}
