package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/nurseprep-backend/internal/model"
	"github.com/stemsi/nurseprep-backend/internal/quiz"
)

func TestAdminService_DeleteSelfIsForbidden(t *testing.T) {
	s := NewAdminService(nil, testAuthService())
	err := s.DeleteAdmin(context.Background(), 3, 3)
	assert.ErrorIs(t, err, ErrCannotModifySelf)
}

func TestAdminService_Roles(t *testing.T) {
	roles := NewAdminService(nil, testAuthService()).Roles()
	require.Len(t, roles, len(model.Roles))

	byName := map[model.Role][]string{}
	for _, r := range roles {
		byName[r.Name] = r.Permissions
	}
	assert.Contains(t, byName[model.RoleSuperAdmin], string(model.PermissionAdminsManage))
	assert.NotContains(t, byName[model.RoleInstructor], string(model.PermissionAdminsManage))
	assert.NotContains(t, byName[model.RoleProctor], string(model.PermissionExamsWriteOwn))
}

func TestFillQuestionTypes(t *testing.T) {
	counts := map[quiz.Type]int{quiz.TypeSATA: 4}
	fillQuestionTypes(counts)

	assert.Len(t, counts, len(quiz.Types))
	assert.Equal(t, 4, counts[quiz.TypeSATA])
	assert.Equal(t, 0, counts[quiz.TypeCaseStudy])
}
