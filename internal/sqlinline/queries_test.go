package sqlinline

import (
	"regexp"
	"strings"
	"testing"
)

var allQueries = map[string]string{
	"QSelectSetting":              QSelectSetting,
	"QUpsertSetting":              QUpsertSetting,
	"QInsertGeneratedImage":       QInsertGeneratedImage,
	"QSelectJobImages":            QSelectJobImages,
	"QSelectProject":              QSelectProject,
	"QSelectProjectCharacters":    QSelectProjectCharacters,
	"QSelectScene":                QSelectScene,
	"QSelectProjectScenes":        QSelectProjectScenes,
	"QSelectSceneCharacterValues": QSelectSceneCharacterValues,
	"QInsertJob":                  QInsertJob,
	"QSelectJob":                  QSelectJob,
	"QSelectNextPending":          QSelectNextPending,
	"QMarkJobRunning":             QMarkJobRunning,
	"QIncrementJobCompleted":      QIncrementJobCompleted,
	"QMarkJobCompleted":           QMarkJobCompleted,
	"QMarkJobFailed":              QMarkJobFailed,
	"QMarkJobsCancelled":          QMarkJobsCancelled,
	"QRequeueRunningJobs":         QRequeueRunningJobs,
	"QListActiveJobs":             QListActiveJobs,
	"QListProjectJobs":            QListProjectJobs,
	"QCountPendingJobs":           QCountPendingJobs,
}

func TestQueriesCarryAuditMarkers(t *testing.T) {
	marker := regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	seen := map[string]string{}
	for name, q := range allQueries {
		first, _, ok := strings.Cut(q, "\n")
		if !ok || !marker.MatchString(first) {
			t.Errorf("%s: missing audit marker, first line %q", name, first)
			continue
		}
		if other, dup := seen[first]; dup {
			t.Errorf("%s and %s share marker %q", name, other, first)
		}
		seen[first] = name
	}
}

// "values" is fully reserved in postgres and cannot appear as a bare column
// reference; the column is named placeholder_values for that reason.
func TestQueriesAvoidReservedValuesColumn(t *testing.T) {
	bare := regexp.MustCompile(`(?i)(^|[\s,(])values([\s,;)]|$)`)
	for name, q := range allQueries {
		body := strings.ToLower(strings.TrimSpace(q[strings.Index(q, "\n")+1:]))
		if !strings.HasPrefix(body, "select") {
			continue
		}
		if bare.MatchString(body) {
			t.Errorf("%s selects the reserved word values:\n%s", name, q)
		}
	}
}

// An empty project filter must not reach the uuid cast: under the extended
// protocol ''::uuid is folded at plan time and rejected before $1 is even
// bound. nullif keeps the cast null-safe.
func TestListActiveJobsFilterIsNullSafe(t *testing.T) {
	if strings.Contains(QListActiveJobs, "$1 = ''") {
		t.Fatalf("project filter compares $1 against '' directly:\n%s", QListActiveJobs)
	}
	if !strings.Contains(QListActiveJobs, "nullif($1::text, '')::uuid") {
		t.Fatalf("project filter must cast through nullif:\n%s", QListActiveJobs)
	}
}
