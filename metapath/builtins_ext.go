package metapath

import (
	"encoding/base64"

	"github.com/midbel/metapath/node"
)

func extFunctions() []*Function {
	name := func(local string) QName {
		return node.ExpandedName(NamespaceExtended, local)
	}
	return []*Function{
		builtin(name("base64-encode"), Optional(TypeBase64Binary), extBase64Encode, arg("input", Optional(TypeString))),
		builtin(name("base64-decode"), Optional(TypeString), extBase64Decode, arg("input", Optional(TypeBase64Binary))),
	}
}

func extBase64Encode(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	if args[0].IsEmpty() {
		return EmptySequence(), nil
	}
	return Singleton(NewBase64Binary([]byte(stringArg(args[0])))), nil
}

func extBase64Decode(_ *DynamicContext, args []Sequence, _ Item) (Sequence, error) {
	if args[0].IsEmpty() {
		return EmptySequence(), nil
	}
	data, err := base64.StdEncoding.DecodeString(stringArg(args[0]))
	if err != nil {
		return EmptySequence(), argumentError(CodeInvalidCast, "%s", err)
	}
	return stringResult(string(data))
}
