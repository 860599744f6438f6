package common

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrIOFailure is wrapped by every error caused by reading or writing a file.
var ErrIOFailure = errors.New("io failure")

var suffixes = [6]string{"B", "KB", "MB", "GB", "TB", "PB"}

// HumanFileSize converts a int64 representing the number of bytes
// into a human readable string
func HumanFileSize(size int64) string {
	floatSize := float64(size)
	if floatSize <= 0 {
		return "Empty File"
	}

	base := math.Log(floatSize) / math.Log(1024)
	getSize := round(math.Pow(1024, base-math.Floor(base)), .5, 2)

	suffixBase := int(math.Floor(base))
	if suffixBase < 0 || suffixBase > 5 {
		return "File Size is out of Index"
	}
	getSuffix := suffixes[suffixBase]

	return strconv.FormatFloat(getSize, 'f', -1, 64) + " " + getSuffix
}

func round(val float64, roundOn float64, places int) float64 {
	var round float64
	pow := math.Pow(10, float64(places))
	digit := pow * val
	_, div := math.Modf(digit)
	if div >= roundOn {
		round = math.Ceil(digit)
	} else {
		round = math.Floor(digit)
	}
	return round / pow
}

// MD5Hash returns the hex encoded MD5 digest of data. It is only used to
// fingerprint payloads in status output.
func MD5Hash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// ReadData reads the whole file at path.
func ReadData(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open file %s: %w", ErrIOFailure, path, err)
	}
	return data, nil
}

// WriteData writes data to path. If the file was opened but the write fails,
// the partial file is removed so no truncated output is left behind. A path
// that cannot be opened is left as it was.
func WriteData(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("%w: could not open file %s: %w", ErrIOFailure, path, err)
	}

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("%w: could not write file %s: %w", ErrIOFailure, path, err)
	}

	return nil
}

// DefaultObfuscatedPath derives the output path for an obfuscate run from the
// payload file: "secret.txt" with method "lsb" becomes "secret-lsb.png".
func DefaultObfuscatedPath(dataFile, method, extension string) string {
	if dataFile == "" {
		dataFile = "payload"
	}
	return fmt.Sprintf("%s-%s.%s", trimExt(dataFile), method, strings.TrimPrefix(extension, "."))
}

// DefaultRecoveredPath derives the output path for a deobfuscate run from the
// carrier: "secret-lsb.png" becomes "secret-lsb-recovered".
func DefaultRecoveredPath(inputFile string) string {
	return trimExt(inputFile) + "-recovered"
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}
