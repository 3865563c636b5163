package dataset

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// Format is the encoding of the indicator sheet.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// SchemeMinIO prefixes dataset locations stored in object storage.
const SchemeMinIO = "minio"

// Location points at the dataset: a local path or minio://bucket/key.
type Location struct {
	Raw    string
	Bucket string
	Key    string
	Path   string
}

// Remote reports whether the dataset lives in object storage.
func (l Location) Remote() bool { return l.Bucket != "" }

func (l Location) String() string { return l.Raw }

// name is the file name used for format detection.
func (l Location) name() string {
	if l.Remote() {
		return path.Base(l.Key)
	}
	return filepath.Base(l.Path)
}

// ParseLocation parses a dataset location.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, errors.New(errors.ErrCodeValidation, "dataset location is required")
	}
	if !strings.HasPrefix(raw, SchemeMinIO+"://") {
		return Location{Raw: raw, Path: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, errors.Wrap(err, errors.ErrCodeValidation, "invalid dataset location").WithDetail(raw)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return Location{}, errors.New(errors.ErrCodeValidation, "dataset location must be minio://bucket/key").WithDetail(raw)
	}
	return Location{Raw: raw, Bucket: u.Host, Key: key}, nil
}

// DetectFormat picks the format from the location's extension unless
// override is set.
func DetectFormat(loc Location, override string) (Format, error) {
	if override != "" {
		switch f := Format(strings.ToLower(override)); f {
		case FormatXLSX, FormatCSV:
			return f, nil
		default:
			return "", errors.Newf(errors.ErrCodeValidation, "unsupported dataset format %q", override)
		}
	}
	switch strings.ToLower(filepath.Ext(loc.name())) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", errors.New(errors.ErrCodeValidation, "cannot infer dataset format from extension").WithDetail(loc.Raw)
	}
}

//Personal.AI order the ending
