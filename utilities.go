package matasano

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ciz/cryptopals/cryptodata"
)

func getLinesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	return lines, scanner.Err()
}

// ReadB64Lines decodes every non-empty line of filePath as a separate base64
// string.
func ReadB64Lines(filePath string) ([]cryptodata.Data, error) {
	lines, err := getLinesFromFile(filePath)
	if err != nil {
		return nil, err
	}

	res := make([]cryptodata.Data, len(lines))
	for index, element := range lines {
		res[index], err = cryptodata.FromBase64(element)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filePath, index+1, err)
		}
	}

	return res, nil
}

// ReadB64File decodes the whole of filePath as one base64 string, ignoring
// line breaks.
func ReadB64File(filePath string) (cryptodata.Data, error) {
	lines, err := getLinesFromFile(filePath)
	if err != nil {
		return nil, err
	}

	d, err := cryptodata.FromBase64(strings.Join(lines, ""))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return d, nil
}
