package token

import "fmt"

type KeywordKind int

const (
	Mut KeywordKind = iota
	Const
	I32
	U32
	I64
	I16
	U16
	U8
	I8
	Bit
	F64
	F32
	Fn
	If
	Else
	TypeKw
	This
	Null
	Undef
	CharKw
	StringKw
	Inline
	Static
	Switch
	For
	In
	Of
	Break
	Enum
	Pub
	Return
	Async
	Await
	Box
	Trait
	Ptr
	Match
	Addr
	Vol
	List
	True
	False
	Void
	KeywordCount
)

// Keywords is indexed by KeywordKind.
var Keywords = [KeywordCount]string{
	"mut", "const", "i32", "u32", "i64", "i16", "u16", "u8", "i8", "bit", "f64", "f32", "fn", "if",
	"else", "type", "this", "null", "undef", "char", "string", "inline", "static", "switch", "for",
	"in", "of", "break", "enum", "pub", "return", "async", "await", "box", "trait", "ptr", "match",
	"addr", "vol", "list", "true", "false", "void",
}

type Preproc int

const (
	Import Preproc = iota
	Define
	Macro
	Test
	Release
	Debug
	PreprocCount
)

// Preprocs is indexed by Preproc.
var Preprocs = [PreprocCount]string{"import", "define", "macro", "test", "release", "debug"}

// Lookup tables bucketed by length, then matched exactly.
var (
	keywordsByLen = make(map[int][]KeywordKind)
	preprocsByLen = make(map[int][]Preproc)
)

func init() {
	for i, s := range Keywords {
		keywordsByLen[len(s)] = append(keywordsByLen[len(s)], KeywordKind(i))
	}
	for i, s := range Preprocs {
		preprocsByLen[len(s)] = append(preprocsByLen[len(s)], Preproc(i))
	}
}

// LookupKeyword finds the keyword spelled exactly word.
func LookupKeyword(word string) (KeywordKind, bool) {
	for _, kw := range keywordsByLen[len(word)] {
		if Keywords[kw] == word {
			return kw, true
		}
	}
	return 0, false
}

// LookupPreproc finds the preprocessor keyword spelled exactly word.
func LookupPreproc(word string) (Preproc, bool) {
	for _, p := range preprocsByLen[len(word)] {
		if Preprocs[p] == word {
			return p, true
		}
	}
	return 0, false
}

func (k KeywordKind) String() string {
	if k >= 0 && k < KeywordCount {
		return Keywords[k]
	}
	return fmt.Sprintf("Keyword(%d)", int(k))
}

func (p Preproc) String() string {
	if p >= 0 && p < PreprocCount {
		return Preprocs[p]
	}
	return fmt.Sprintf("Preproc(%d)", int(p))
}

// IsModifier reports whether k may lead a declaration.
func (k KeywordKind) IsModifier() bool {
	switch k {
	case Pub, Mut, Const, Static, Inline, Vol, Async:
		return true
	}
	return false
}

// IsType reports whether k names a built-in type.
func (k KeywordKind) IsType() bool {
	switch k {
	case I32, U32, I64, I16, U16, U8, I8, Bit, F64, F32, CharKw, StringKw, Void, Ptr, List, Box:
		return true
	}
	return false
}
