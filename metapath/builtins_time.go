package metapath

import (
	"net/url"
	"slices"
	"time"

	"github.com/midbel/metapath/node"
)

func temporalFunctions() []*Function {
	return []*Function{
		contextual(builtin(fnName("current-dateTime"), Exactly(TypeDateTime), fnCurrentDateTime)),
		contextual(builtin(fnName("current-date"), Exactly(TypeDate), fnCurrentDate)),
		contextual(builtin(fnName("current-time"), Exactly(TypeTime), fnCurrentTime)),
		contextual(builtin(fnName("implicit-timezone"), Exactly(TypeDayTimeDuration), fnImplicitTimezone)),
		builtin(fnName("dateTime"), Optional(TypeDateTime), fnDateTime, arg("date", Optional(TypeDate)), arg("time", Optional(TypeTime))),
	}
}

func fnCurrentDateTime(ctx *DynamicContext, _ []Sequence, _ Item) (Sequence, error) {
	return Singleton(NewDateTime(ctx.Now(), true)), nil
}

func fnCurrentDate(ctx *DynamicContext, _ []Sequence, _ Item) (Sequence, error) {
	return Singleton(NewDate(ctx.Now(), true)), nil
}

func fnCurrentTime(ctx *DynamicContext, _ []Sequence, _ Item) (Sequence, error) {
	return Singleton(NewTime(ctx.Now(), true)), nil
}

func fnImplicitTimezone(ctx *DynamicContext, _ []Sequence, _ Item) (Sequence, error) {
	_, offset := ctx.Now().Zone()
	return Singleton(NewDayTimeDuration(time.Duration(offset) * time.Second)), nil
}

func fnDateTime(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	first, ok := firstAtomic(args[0])
	if !ok {
		return EmptySequence(), nil
	}
	second, ok := firstAtomic(args[1])
	if !ok {
		return EmptySequence(), nil
	}
	date, clock := first.(dateItem), second.(timeItem)
	loc := time.UTC
	switch {
	case date.tz && clock.tz:
		_, x := date.value.Zone()
		_, y := clock.value.Zone()
		if x != y {
			return EmptySequence(), newError(ErrDateTime, "FORG0008", "date and time have different timezones")
		}
		loc = date.value.Location()
	case date.tz:
		loc = date.value.Location()
	case clock.tz:
		loc = clock.value.Location()
	}
	var (
		y, m, d = date.value.Date()
		c       = clock.value
		when    = time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), c.Nanosecond(), loc)
	)
	return Singleton(NewDateTime(when, date.tz || clock.tz)), nil
}

func documentFunctions() []*Function {
	var uri = arg("uri", Optional(TypeString))
	return slices.Concat(
		[]*Function{
			contextual(builtin(fnName("doc"), Optional(TypeDocument), fnDoc, uri)),
			contextual(builtin(fnName("doc-available"), Exactly(TypeBoolean), fnDocAvailable, uri)),
			contextual(builtin(fnName("static-base-uri"), Optional(TypeURI), fnStaticBaseURI)),
			contextual(builtin(fnName("resolve-uri"), Optional(TypeURI), fnResolveURI, arg("relative", Optional(TypeString)))),
			builtin(fnName("resolve-uri"), Optional(TypeURI), fnResolveURI, arg("relative", Optional(TypeString)), arg("base", Exactly(TypeString))),
		},
		withFocus(fnName("base-uri"), Optional(TypeURI), arg("arg", Optional(TypeNode)), fnBaseURI),
		withFocus(fnName("document-uri"), Optional(TypeURI), arg("arg", Optional(TypeNode)), fnDocumentURI),
	)
}

func fnDoc(ctx *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	if args[0].IsEmpty() {
		return EmptySequence(), nil
	}
	doc, err := ctx.Document(stringArg(args[0]))
	if err != nil {
		return EmptySequence(), err
	}
	return Singleton(NewNode(doc)), nil
}

func fnDocAvailable(ctx *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	if args[0].IsEmpty() {
		return booleanResult(false)
	}
	return booleanResult(ctx.DocumentAvailable(stringArg(args[0])))
}

func fnStaticBaseURI(ctx *DynamicContext, _ []Sequence, _ Item) (Sequence, error) {
	base := ctx.Static().BaseURI()
	if base == nil {
		return EmptySequence(), nil
	}
	return Singleton(NewURI(base.String())), nil
}

func fnResolveURI(ctx *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	if args[0].IsEmpty() {
		return EmptySequence(), nil
	}
	rel, err := url.Parse(stringArg(args[0]))
	if err != nil {
		return EmptySequence(), argumentError(CodeInvalidURI, "%s", err)
	}
	base := ctx.Static().BaseURI()
	if len(args) > 1 {
		if base, err = url.Parse(stringArg(args[1])); err != nil {
			return EmptySequence(), argumentError(CodeInvalidURI, "%s", err)
		}
	}
	if rel.IsAbs() {
		return Singleton(NewURI(rel.String())), nil
	}
	if base == nil || !base.IsAbs() {
		return EmptySequence(), argumentError(CodeInvalidURI, "no absolute base uri to resolve %s", rel)
	}
	return Singleton(NewURI(base.ResolveReference(rel).String())), nil
}

// fnBaseURI gives the uri of the document a node belongs to.
func fnBaseURI(_ *DynamicContext, arg Sequence) (Sequence, error) {
	n, ok := nodeArg(arg)
	if !ok {
		return EmptySequence(), nil
	}
	return fnDocumentURI(nil, Singleton(NewNode(node.Root(n))))
}

func fnDocumentURI(_ *DynamicContext, arg Sequence) (Sequence, error) {
	n, ok := nodeArg(arg)
	if !ok {
		return EmptySequence(), nil
	}
	doc, ok := n.(*node.Document)
	if !ok || doc.URI == "" {
		return EmptySequence(), nil
	}
	return Singleton(NewURI(doc.URI)), nil
}
