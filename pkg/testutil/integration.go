package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// PeopleSchema is the YAML schema describing the people fixture.
const PeopleSchema = `name: people
version: "1"
columns:
  - name: id
    type: int
    nullable: false
    unique: true
  - name: name
    type: string
    size: 32
    display_name: Name
  - name: age
    type: int
  - name: email
    type: string
    default: unknown
  - name: joined
    type: time
`

// IntegrationTestSuite provides a context and a scratch directory to suites
// that work with files and databases.
type IntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	tempDir   string
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()

	tempDir, err := os.MkdirTemp("", "rectable-test-*")
	require.NoError(s.T(), err)
	s.tempDir = tempDir

	s.T().Logf("Integration test suite started in %s", s.tempDir)
}

// TearDownSuite runs after all tests in the suite
func (s *IntegrationTestSuite) TearDownSuite() {
	s.cancel()
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
	s.T().Logf("Integration test suite completed in %v", time.Since(s.startTime))
}

// Context returns the suite context
func (s *IntegrationTestSuite) Context() context.Context {
	return s.ctx
}

// TempDir returns the scratch directory
func (s *IntegrationTestSuite) TempDir() string {
	return s.tempDir
}

// CreateTempFile writes content to name under the scratch directory.
func (s *IntegrationTestSuite) CreateTempFile(name string, content []byte) string {
	path := filepath.Join(s.tempDir, name)
	require.NoError(s.T(), os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(s.T(), os.WriteFile(path, content, 0o600))
	return path
}

// IntegrationTest marks a test as an integration test
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// PeopleCSV renders n persons of the people fixture as CSV with a header.
// A missing age is an empty cell.
func PeopleCSV(n int) string {
	var b strings.Builder
	b.WriteString("id,name,age,email,joined\n")
	for i := 0; i < n; i++ {
		v := PersonValues(i)
		age := ""
		if v[2] != nil {
			age = fmt.Sprint(v[2])
		}
		fmt.Fprintf(&b, "%d,%s,%s,%s,%s\n", v[0], v[1], age, v[3], v[4].(time.Time).Format(time.RFC3339))
	}
	return b.String()
}

// CreatePeopleFiles writes the people schema and a CSV of n persons under
// dir, returning their paths.
func CreatePeopleFiles(t *testing.T, dir string, n int) (schemaPath, csvPath string) {
	t.Helper()
	schemaPath = WriteFile(t, dir, "people.yaml", []byte(PeopleSchema))
	csvPath = WriteFile(t, dir, "people.csv", []byte(PeopleCSV(n)))
	return schemaPath, csvPath
}
