package diagnostic

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"insertable-generator/internal/common"
)

// Sentinel errors for the three failure classes. A *GenerationError matches
// exactly one of them through errors.Is.
var (
	ErrMissingRequiredAnnotation  = errors.New("missing required annotation")
	ErrMalformedAnnotationContent = errors.New("malformed annotation content")
	ErrUnsupportedTypeShape       = errors.New("unsupported type shape")
)

// ErrorKind classifies a GenerationError.
type ErrorKind int

const (
	KindMissingRequiredAnnotation ErrorKind = iota
	KindMalformedAnnotationContent
	KindUnsupportedTypeShape
)

// String returns a human-readable representation of the ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case KindMissingRequiredAnnotation:
		return "MissingRequiredAnnotation"
	case KindMalformedAnnotationContent:
		return "MalformedAnnotationContent"
	case KindUnsupportedTypeShape:
		return "UnsupportedTypeShape"
	default:
		return common.UnknownStr
	}
}

// Code returns the diagnostic code used when the error is reported.
func (k ErrorKind) Code() string {
	switch k {
	case KindMissingRequiredAnnotation:
		return CodeMissingAnnotation
	case KindMalformedAnnotationContent:
		return CodeMalformedAnnotation
	case KindUnsupportedTypeShape:
		return CodeUnsupportedShape
	default:
		return common.UnknownStr
	}
}

// AnnotationKind names the annotation a GenerationError is about.
type AnnotationKind string

const (
	AnnotationTable      AnnotationKind = "table binding"
	AnnotationChangeset  AnnotationKind = "changeset configuration"
	AnnotationExclusions AnnotationKind = "exclusion list"
)

// GenerationError aborts generation for a single source type.
type GenerationError struct {
	Kind       ErrorKind
	Annotation AnnotationKind // empty for UnsupportedTypeShape
	Reason     string
	TypeName   string
	Pos        token.Position
}

// MissingAnnotation reports that a required annotation is absent.
func MissingAnnotation(kind AnnotationKind) *GenerationError {
	return &GenerationError{
		Kind:       KindMissingRequiredAnnotation,
		Annotation: kind,
		Reason:     "missing " + string(kind) + " annotation",
	}
}

// MalformedAnnotation reports annotation content that cannot be accepted.
func MalformedAnnotation(kind AnnotationKind, reason string) *GenerationError {
	return &GenerationError{
		Kind:       KindMalformedAnnotationContent,
		Annotation: kind,
		Reason:     reason,
	}
}

// UnsupportedShape reports a source declaration the generator cannot project.
func UnsupportedShape(format string, args ...any) *GenerationError {
	return &GenerationError{
		Kind:   KindUnsupportedTypeShape,
		Reason: fmt.Sprintf(format, args...),
	}
}

// At returns a copy of e bound to the offending type.
func (e *GenerationError) At(typeName string, pos token.Position) *GenerationError {
	cp := *e
	cp.TypeName = typeName
	if !cp.Pos.IsValid() {
		cp.Pos = pos
	}

	return &cp
}

// WithPos returns a copy of e pointing at pos.
func (e *GenerationError) WithPos(pos token.Position) *GenerationError {
	cp := *e
	cp.Pos = pos

	return &cp
}

func (e *GenerationError) Error() string {
	var sb strings.Builder

	if e.Pos.IsValid() {
		sb.WriteString(e.Pos.String())
		sb.WriteString(": ")
	}

	if e.TypeName != "" {
		sb.WriteString(e.TypeName)
		sb.WriteString(": ")
	}

	sb.WriteString(e.Reason)

	return sb.String()
}

// Is matches the sentinel of the error's kind.
func (e *GenerationError) Is(target error) bool {
	switch e.Kind {
	case KindMissingRequiredAnnotation:
		return target == ErrMissingRequiredAnnotation
	case KindMalformedAnnotationContent:
		return target == ErrMalformedAnnotationContent
	case KindUnsupportedTypeShape:
		return target == ErrUnsupportedTypeShape
	default:
		return false
	}
}
