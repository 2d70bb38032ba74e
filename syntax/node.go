package syntax

type NodeKind int

const (
	KindBogus NodeKind = iota

	// JSON
	KindJsonRoot
	KindJsonArray
	KindJsonArrayElements
	KindJsonObject
	KindJsonMemberList
	KindJsonMember
	KindJsonMemberName
	KindJsonString
	KindJsonNumber
	KindJsonBoolean
	KindJsonNull

	// Statements and declarations
	KindModule
	KindVarDecl
	KindVarDeclarator
	KindFunctionDecl
	KindClassDecl
	KindClassExpr
	KindClassBody
	KindMethodDef
	KindFieldDef
	KindReturn
	KindIf
	KindBlock
	KindExprStmt
	KindFor
	KindForIn
	KindForOf
	KindWhile
	KindDoWhile
	KindBreak
	KindContinue
	KindThrow
	KindTry
	KindCatch
	KindFinally
	KindSwitch
	KindCase
	KindEmpty
	KindLabeled
	KindDebugger
	KindImport
	KindImportSpecifier
	KindExport
	KindExportSpecifier
	KindTypeAlias
	KindInterface

	// Functions and patterns
	KindArrowFunction
	KindFunctionExpr
	KindParameters
	KindParameter
	KindRestElement
	KindObjectPattern
	KindPatternProperty
	KindArrayPattern
	KindAssignmentPattern

	// Names
	KindIdentifierBinding
	KindReferenceIdentifier
	KindIdentifierAssignment
	KindMemberName
	KindPropertyName
	KindComputedPropertyName
	KindTypeName

	// Expressions
	KindAssign
	KindConditional
	KindBinary
	KindLogical
	KindUnary
	KindUpdate
	KindCall
	KindArguments
	KindNew
	KindMember
	KindComputedMember
	KindTaggedTemplate
	KindArray
	KindObject
	KindProperty
	KindShorthandProperty
	KindSpread
	KindParen
	KindSequence
	KindLiteral
	KindTemplate
	KindThis
	KindSuper
	KindAwait
	KindYield
	KindAs
	KindNonNull

	// Types
	KindTypeAnnotation
	KindTypeArguments
	KindTypeParameters
	KindType
)

var nodeKindNames = map[NodeKind]string{
	KindBogus:                "Bogus",
	KindJsonRoot:             "JsonRoot",
	KindJsonArray:            "JsonArray",
	KindJsonArrayElements:    "JsonArrayElements",
	KindJsonObject:           "JsonObject",
	KindJsonMemberList:       "JsonMemberList",
	KindJsonMember:           "JsonMember",
	KindJsonMemberName:       "JsonMemberName",
	KindJsonString:           "JsonString",
	KindJsonNumber:           "JsonNumber",
	KindJsonBoolean:          "JsonBoolean",
	KindJsonNull:             "JsonNull",
	KindModule:               "Module",
	KindVarDecl:              "VarDecl",
	KindVarDeclarator:        "VarDeclarator",
	KindFunctionDecl:         "FunctionDecl",
	KindClassDecl:            "ClassDecl",
	KindClassExpr:            "ClassExpr",
	KindClassBody:            "ClassBody",
	KindMethodDef:            "MethodDef",
	KindFieldDef:             "FieldDef",
	KindReturn:               "Return",
	KindIf:                   "If",
	KindBlock:                "Block",
	KindExprStmt:             "ExprStmt",
	KindFor:                  "For",
	KindForIn:                "ForIn",
	KindForOf:                "ForOf",
	KindWhile:                "While",
	KindDoWhile:              "DoWhile",
	KindBreak:                "Break",
	KindContinue:             "Continue",
	KindThrow:                "Throw",
	KindTry:                  "Try",
	KindCatch:                "Catch",
	KindFinally:              "Finally",
	KindSwitch:               "Switch",
	KindCase:                 "Case",
	KindEmpty:                "Empty",
	KindLabeled:              "Labeled",
	KindDebugger:             "Debugger",
	KindImport:               "Import",
	KindImportSpecifier:      "ImportSpecifier",
	KindExport:               "Export",
	KindExportSpecifier:      "ExportSpecifier",
	KindTypeAlias:            "TypeAlias",
	KindInterface:            "Interface",
	KindArrowFunction:        "ArrowFunction",
	KindFunctionExpr:         "FunctionExpr",
	KindParameters:           "Parameters",
	KindParameter:            "Parameter",
	KindRestElement:          "RestElement",
	KindObjectPattern:        "ObjectPattern",
	KindPatternProperty:      "PatternProperty",
	KindArrayPattern:         "ArrayPattern",
	KindAssignmentPattern:    "AssignmentPattern",
	KindIdentifierBinding:    "IdentifierBinding",
	KindReferenceIdentifier:  "ReferenceIdentifier",
	KindIdentifierAssignment: "IdentifierAssignment",
	KindMemberName:           "MemberName",
	KindPropertyName:         "PropertyName",
	KindComputedPropertyName: "ComputedPropertyName",
	KindTypeName:             "TypeName",
	KindAssign:               "Assign",
	KindConditional:          "Conditional",
	KindBinary:               "Binary",
	KindLogical:              "Logical",
	KindUnary:                "Unary",
	KindUpdate:               "Update",
	KindCall:                 "Call",
	KindArguments:            "Arguments",
	KindNew:                  "New",
	KindMember:               "Member",
	KindComputedMember:       "ComputedMember",
	KindTaggedTemplate:       "TaggedTemplate",
	KindArray:                "Array",
	KindObject:               "Object",
	KindProperty:             "Property",
	KindShorthandProperty:    "ShorthandProperty",
	KindSpread:               "Spread",
	KindParen:                "Paren",
	KindSequence:             "Sequence",
	KindLiteral:              "Literal",
	KindTemplate:             "Template",
	KindThis:                 "This",
	KindSuper:                "Super",
	KindAwait:                "Await",
	KindYield:                "Yield",
	KindAs:                   "As",
	KindNonNull:              "NonNull",
	KindTypeAnnotation:       "TypeAnnotation",
	KindTypeArguments:        "TypeArguments",
	KindTypeParameters:       "TypeParameters",
	KindType:                 "Type",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsFunction reports whether nodes of kind k open a function scope.
func (k NodeKind) IsFunction() bool {
	switch k {
	case KindFunctionDecl, KindFunctionExpr, KindArrowFunction, KindMethodDef:
		return true
	}
	return false
}

// IsType reports whether k is a type-level construct whose identifiers never
// refer to runtime values.
func (k NodeKind) IsType() bool {
	switch k {
	case KindTypeAnnotation, KindTypeArguments, KindTypeParameters, KindType:
		return true
	}
	return false
}
