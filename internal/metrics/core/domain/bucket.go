package domain

import "math"

// Unknown labels values that are missing, non-numeric or outside every
// bucket.
const Unknown = "unknown"

// Bucket is the half-open range [Low, High).
type Bucket struct {
	Low   float64
	High  float64
	Label string
}

// BucketSet is an ordered list of disjoint buckets.
type BucketSet []Bucket

// Classify returns the label of the first bucket containing v, or
// Unknown when v is not a number or no bucket matches.
func (s BucketSet) Classify(v any) string {
	f, ok := Number(v)
	if !ok {
		return Unknown
	}
	return s.ClassifyFloat(f)
}

func (s BucketSet) ClassifyFloat(f float64) string {
	for _, b := range s {
		if b.Low <= f && f < b.High {
			return b.Label
		}
	}
	return Unknown
}

// Labels returns bucket labels in order.
func (s BucketSet) Labels() []string {
	out := make([]string, len(s))
	for i, b := range s {
		out[i] = b.Label
	}
	return out
}

func buckets(bounds []float64, labels ...string) BucketSet {
	set := make(BucketSet, len(labels))
	for i, l := range labels {
		set[i] = Bucket{Low: bounds[i], High: bounds[i+1], Label: l}
	}
	return set
}

var inf = math.Inf(1)

var (
	// RAMBuckets classifies host memory in MB.
	RAMBuckets = buckets(
		[]float64{0, 512, 1024, 2048, 4096, 8192, inf},
		"<512MB", "512MB-1GB", "1-2GB", "2-4GB", "4-8GB", "8GB+",
	)
	// NozzleTempBuckets classifies nozzle temperature in °C.
	NozzleTempBuckets = buckets(
		[]float64{0, 180, 200, 220, 250, 280, 310, inf},
		"<180C", "180-200C", "200-220C", "220-250C", "250-280C", "280-310C", "310C+",
	)
	// BedTempBuckets classifies bed temperature in °C.
	BedTempBuckets = buckets(
		[]float64{0, 40, 60, 80, 100, 120, inf},
		"<40C", "40-60C", "60-80C", "80-100C", "100-120C", "120C+",
	)
	// UptimeBuckets classifies uptime in seconds.
	UptimeBuckets = buckets(
		[]float64{0, 60, 300, 900, 3600, 14400, inf},
		"<1min", "1-5min", "5-15min", "15min-1hr", "1-4hr", "4hr+",
	)
)
