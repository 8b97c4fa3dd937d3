package utilities

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"HireSight-backend/internal/model"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains([]string{"a", "b"}, "c"))
	assert.False(t, Contains(nil, "a"))
}

func TestHashAndVerifyPassword(t *testing.T) {
	hashed, err := HashPassword("correct horse battery staple")
	assert.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hashed)

	assert.True(t, VerifyPassword("correct horse battery staple", hashed))
	assert.False(t, VerifyPassword("wrong", hashed))
}

func TestExtractUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := ExtractUser(c)
	assert.Error(t, err)

	c.Set("user", "not a user struct")
	_, err = ExtractUser(c)
	assert.Error(t, err)

	want := model.User{Username: "alice", Role: model.RoleCandidate}
	c.Set("user", want)
	got, err := ExtractUser(c)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMergeNonEmpty(t *testing.T) {
	type profile struct {
		Name     string
		Company  string
		Location *string
	}

	loc := "Bangkok"
	dst := profile{Name: "old name", Company: "old company"}
	src := profile{Name: "new name", Location: &loc}

	MergeNonEmpty(&dst, &src)

	assert.Equal(t, "new name", dst.Name)
	assert.Equal(t, "old company", dst.Company, "zero-value fields must not overwrite")
	assert.Equal(t, &loc, dst.Location)
}
