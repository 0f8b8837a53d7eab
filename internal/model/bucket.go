package model

// Bucket is one of the six fixed organizational categories a task belongs to.
type Bucket string

const (
	BucketPractice   Bucket = "practice"
	BucketQualifying Bucket = "qualifying"
	BucketSprint     Bucket = "sprint"
	BucketRace       Bucket = "race"
	BucketEndurance  Bucket = "endurance"
	BucketPaddock    Bucket = "paddock"
)

// ArchiveBucket is where tasks are force-moved on finish or dnf.
const ArchiveBucket = BucketPaddock

// Buckets lists all valid buckets in display order.
func Buckets() []Bucket {
	return []Bucket{
		BucketPractice,
		BucketQualifying,
		BucketSprint,
		BucketRace,
		BucketEndurance,
		BucketPaddock,
	}
}

// ValidBucket reports whether b is one of the six fixed buckets.
func ValidBucket(b Bucket) bool {
	switch b {
	case BucketPractice, BucketQualifying, BucketSprint, BucketRace, BucketEndurance, BucketPaddock:
		return true
	}
	return false
}
