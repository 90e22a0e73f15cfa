// Package patients loads the screening registry: one CSV row per patient
// with id, age, gender and (if already graded) diagnosis.
package patients

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DiagnosisLabels are the ordered class names of the screening model.
var DiagnosisLabels = []string{"No DR", "Mild", "Moderate", "Severe", "Proliferative DR"}

// DiagnosisDescriptions are the plain-language forms used in reports.
var DiagnosisDescriptions = []string{
	"No signs of eye disease",
	"Mild eye disease detected",
	"Moderate eye disease detected",
	"Severe eye disease detected",
	"Advanced eye disease detected",
}

// Patient is one registry row.
type Patient struct {
	ID        string
	Age       int
	Gender    string
	Diagnosis int // -1 when ungraded
}

// Label returns the diagnosis class name, or "Ungraded".
func (p Patient) Label() string {
	if p.Diagnosis < 0 || p.Diagnosis >= len(DiagnosisLabels) {
		return "Ungraded"
	}
	return DiagnosisLabels[p.Diagnosis]
}

// Registry is an in-memory patient index keyed by id.
type Registry struct {
	byID  map[string]Patient
	order []string
}

// LoadCSV reads a registry file. Expected header: id_code,age,gender,diagnosis
// (diagnosis column optional). Unknown extra columns are ignored.
func LoadCSV(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read registry header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idCol, ok := col["id_code"]
	if !ok {
		return nil, fmt.Errorf("registry %s: missing id_code column", path)
	}

	reg := &Registry{byID: make(map[string]Patient)}
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("registry %s line %d: %w", path, line, err)
		}

		p := Patient{ID: strings.TrimSpace(record[idCol]), Diagnosis: -1}
		if p.ID == "" {
			continue
		}
		if i, ok := col["age"]; ok && i < len(record) {
			if age, err := strconv.Atoi(strings.TrimSpace(record[i])); err == nil {
				p.Age = age
			}
		}
		if i, ok := col["gender"]; ok && i < len(record) {
			p.Gender = strings.TrimSpace(record[i])
		}
		if i, ok := col["diagnosis"]; ok && i < len(record) {
			if d, err := strconv.Atoi(strings.TrimSpace(record[i])); err == nil {
				p.Diagnosis = d
			}
		}

		if _, dup := reg.byID[p.ID]; !dup {
			reg.order = append(reg.order, p.ID)
		}
		reg.byID[p.ID] = p
	}
	return reg, nil
}

// Get looks up a patient by id.
func (r *Registry) Get(id string) (Patient, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// All returns patients in file order.
func (r *Registry) All() []Patient {
	out := make([]Patient, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len reports the number of patients.
func (r *Registry) Len() int {
	return len(r.order)
}
