package service

import (
	"context"

	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/repository"
	"github.com/stemsi/nurseprep-backend/internal/response"
)

// StudentService handles student business logic.
type StudentService struct {
	studentRepo *repository.StudentRepository
	auth        *AuthService
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, auth *AuthService) *StudentService {
	return &StudentService{studentRepo: studentRepo, auth: auth}
}

// Login checks the credentials and issues a token. Any earlier session of the
// student is invalidated.
func (s *StudentService) Login(ctx context.Context, req *model.StudentLoginRequest) (*model.StudentLoginResponse, error) {
	student, err := s.studentRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.auth.CheckPassword(student.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := s.auth.GenerateStudentToken(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	return &model.StudentLoginResponse{Token: token, Student: *student}, nil
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// ListStudents retrieves students with pagination and optional filters.
func (s *StudentService) ListStudents(ctx context.Context, cohort, search string, page, perPage int) ([]model.Student, *response.Pagination, error) {
	page, perPage = clampPage(page, perPage)

	students, total, err := s.studentRepo.ListPaginated(ctx, cohort, search, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, response.NewPagination(page, perPage, total), nil
}

// Create inserts a new student with a hashed password.
func (s *StudentService) Create(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	hashed, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	student := &model.Student{
		Username:     req.Username,
		Name:         req.Name,
		Cohort:       req.Cohort,
		PasswordHash: hashed,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Update modifies a student's details. The password changes only when provided.
func (s *StudentService) Update(ctx context.Context, id int, req *model.UpdateStudentRequest) (*model.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	student.Name = req.Name
	student.Cohort = req.Cohort

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}

	if req.Password != "" {
		hashed, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		if err := s.studentRepo.UpdatePassword(ctx, id, hashed); err != nil {
			return nil, err
		}
	}
	return student, nil
}

// Delete removes a student by ID and drops their login session.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.auth.ResetStudentSession(ctx, id)
}

// ResetSession logs the student out of every device.
func (s *StudentService) ResetSession(ctx context.Context, id int) error {
	if _, err := s.studentRepo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.auth.ResetStudentSession(ctx, id)
}
