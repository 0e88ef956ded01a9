package metapath

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

func stringFunctions() []*Function {
	var (
		optString = Optional(TypeString)
		input     = arg("input", optString)
		pattern   = arg("pattern", Exactly(TypeString))
		flags     = arg("flags", Exactly(TypeString))
	)
	return slices.Concat(
		withFocus(fnName("string-length"), Exactly(TypeInteger), input, fnStringLength),
		withFocus(fnName("normalize-space"), Exactly(TypeString), input, fnNormalizeSpace),
		[]*Function{
			variadic(builtin(fnName("concat"), Exactly(TypeString), fnConcat, arg("arg1", Optional(TypeAnyAtomic)), arg("arg2", Optional(TypeAnyAtomic)))),
			builtin(fnName("string-join"), Exactly(TypeString), fnStringJoin, arg("input", Many(TypeAnyAtomic))),
			builtin(fnName("string-join"), Exactly(TypeString), fnStringJoin, arg("input", Many(TypeAnyAtomic)), arg("separator", Exactly(TypeString))),
			builtin(fnName("substring"), Exactly(TypeString), fnSubstring, input, arg("start", Exactly(TypeNumeric))),
			builtin(fnName("substring"), Exactly(TypeString), fnSubstring, input, arg("start", Exactly(TypeNumeric)), arg("length", Exactly(TypeNumeric))),
			builtin(fnName("contains"), Exactly(TypeBoolean), stringPredicate(strings.Contains), input, arg("search", optString)),
			builtin(fnName("starts-with"), Exactly(TypeBoolean), stringPredicate(strings.HasPrefix), input, arg("search", optString)),
			builtin(fnName("ends-with"), Exactly(TypeBoolean), stringPredicate(strings.HasSuffix), input, arg("search", optString)),
			builtin(fnName("substring-before"), Exactly(TypeString), fnSubstringBefore, input, arg("search", optString)),
			builtin(fnName("substring-after"), Exactly(TypeString), fnSubstringAfter, input, arg("search", optString)),
			builtin(fnName("upper-case"), Exactly(TypeString), stringMapper(cases.Upper(language.Und).String), input),
			builtin(fnName("lower-case"), Exactly(TypeString), stringMapper(cases.Lower(language.Und).String), input),
			builtin(fnName("normalize-unicode"), Exactly(TypeString), fnNormalizeUnicode, input),
			builtin(fnName("normalize-unicode"), Exactly(TypeString), fnNormalizeUnicode, input, arg("form", Exactly(TypeString))),
			builtin(fnName("compare"), Optional(TypeInteger), fnCompare, arg("left", optString), arg("right", optString)),
			builtin(fnName("matches"), Exactly(TypeBoolean), fnMatches, input, pattern),
			builtin(fnName("matches"), Exactly(TypeBoolean), fnMatches, input, pattern, flags),
			builtin(fnName("replace"), Exactly(TypeString), fnReplace, input, pattern, arg("replacement", Exactly(TypeString))),
			builtin(fnName("replace"), Exactly(TypeString), fnReplace, input, pattern, arg("replacement", Exactly(TypeString)), flags),
			builtin(fnName("tokenize"), Many(TypeString), fnTokenize, input),
			builtin(fnName("tokenize"), Many(TypeString), fnTokenize, input, pattern),
			builtin(fnName("tokenize"), Many(TypeString), fnTokenize, input, pattern, flags),
		},
	)
}

func fnStringLength(_ *DynamicContext, arg Sequence) (Sequence, error) {
	first, ok := arg.First()
	if !ok {
		return integerResult(0)
	}
	str, err := StringValue(first)
	if err != nil {
		return EmptySequence(), err
	}
	return integerResult(utf8.RuneCountInString(str))
}

func fnNormalizeSpace(_ *DynamicContext, arg Sequence) (Sequence, error) {
	first, ok := arg.First()
	if !ok {
		return stringResult("")
	}
	str, err := StringValue(first)
	if err != nil {
		return EmptySequence(), err
	}
	return stringResult(strings.Join(strings.Fields(str), " "))
}

func fnConcat(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	var str strings.Builder
	for _, a := range args {
		str.WriteString(stringArg(a))
	}
	return stringResult(str.String())
}

func fnStringJoin(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	var sep string
	if len(args) > 1 {
		sep = stringArg(args[1])
	}
	var list []string
	for item := range args[0].All() {
		list = append(list, item.(Atomic).String())
	}
	return stringResult(strings.Join(list, sep))
}

func fnSubstring(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	str := []rune(stringArg(args[0]))
	start, err := roundedArg(args[1])
	if err != nil {
		return EmptySequence(), err
	}
	end := int64(len(str)) + 1
	if len(args) > 2 {
		length, err := roundedArg(args[2])
		if err != nil {
			return EmptySequence(), err
		}
		end = min(end, start+length)
	}
	start = max(start, 1)
	if start >= end {
		return stringResult("")
	}
	return stringResult(string(str[start-1 : end-1]))
}

func stringPredicate(test func(string, string) bool) Body {
	return func(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
		return booleanResult(test(stringArg(args[0]), stringArg(args[1])))
	}
}

func stringMapper(apply func(string) string) Body {
	return func(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
		return stringResult(apply(stringArg(args[0])))
	}
}

func fnSubstringBefore(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	before, _, ok := strings.Cut(stringArg(args[0]), stringArg(args[1]))
	if !ok {
		return stringResult("")
	}
	return stringResult(before)
}

func fnSubstringAfter(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	_, after, ok := strings.Cut(stringArg(args[0]), stringArg(args[1]))
	if !ok {
		return stringResult("")
	}
	return stringResult(after)
}

func fnNormalizeUnicode(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	form := "NFC"
	if len(args) > 1 {
		form = strings.ToUpper(strings.TrimSpace(stringArg(args[1])))
	}
	str := stringArg(args[0])
	switch form {
	case "":
		return stringResult(str)
	case "NFC":
		return stringResult(norm.NFC.String(str))
	case "NFD":
		return stringResult(norm.NFD.String(str))
	case "NFKC":
		return stringResult(norm.NFKC.String(str))
	case "NFKD":
		return stringResult(norm.NFKD.String(str))
	default:
		return EmptySequence(), argumentError("FOCH0003", "normalization form %q is not supported", form)
	}
}

func fnCompare(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	if args[0].IsEmpty() || args[1].IsEmpty() {
		return EmptySequence(), nil
	}
	return integerResult(strings.Compare(stringArg(args[0]), stringArg(args[1])))
}

func compilePattern(args []Sequence, flagIndex int) (*regexp.Regexp, error) {
	pattern := stringArg(args[1])
	if len(args) > flagIndex {
		var prefix string
		for _, f := range stringArg(args[flagIndex]) {
			switch f {
			case 'i', 's', 'm':
				prefix += string(f)
			case 'x':
				pattern = strings.Join(strings.Fields(pattern), "")
			case 'q':
				pattern = regexp.QuoteMeta(pattern)
			default:
				return nil, argumentError("FORX0001", "invalid regular expression flag %q", f)
			}
		}
		if prefix != "" {
			pattern = "(?" + prefix + ")" + pattern
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, argumentError(CodeRegex, "invalid regular expression: %s", err)
	}
	return re, nil
}

func fnMatches(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	re, err := compilePattern(args, 2)
	if err != nil {
		return EmptySequence(), err
	}
	return booleanResult(re.MatchString(stringArg(args[0])))
}

func fnReplace(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	re, err := compilePattern(args, 3)
	if err != nil {
		return EmptySequence(), err
	}
	if re.MatchString("") {
		return EmptySequence(), argumentError("FORX0003", "pattern matches the empty string")
	}
	repl := strings.ReplaceAll(stringArg(args[2]), "$", "$$")
	for i := 9; i >= 0; i-- {
		digit := string(rune('0' + i))
		repl = strings.ReplaceAll(repl, "$$"+digit, "${"+digit+"}")
	}
	return stringResult(re.ReplaceAllString(stringArg(args[0]), repl))
}

func fnTokenize(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	str := stringArg(args[0])
	if len(args) == 1 {
		var list []Item
		for _, f := range strings.Fields(str) {
			list = append(list, NewString(f))
		}
		return NewSequence(list...), nil
	}
	if str == "" {
		return EmptySequence(), nil
	}
	re, err := compilePattern(args, 2)
	if err != nil {
		return EmptySequence(), err
	}
	if re.MatchString("") {
		return EmptySequence(), argumentError("FORX0003", "pattern matches the empty string")
	}
	var list []Item
	for _, part := range re.Split(str, -1) {
		list = append(list, NewString(part))
	}
	return NewSequence(list...), nil
}
