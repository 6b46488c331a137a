package typecheck

// Diagnostic codes attached to type errors.
const (
	CodeAttemptToRedefineDeclaration            = "AttemptToRedefineDeclaration"
	CodeBinaryExpressionOperandsIncompatible    = "BinaryExpressionOperandsIncompatible"
	CodeBinaryExpressionRequiresOperandType     = "BinaryExpressionRequiresOperandType"
	CodeFunctionReturnTypeMismatch              = "FunctionReturnTypeMismatch"
	CodeIfGuardNotBoolean                       = "IfGuardNotBoolean"
	CodeInvalidDeclarationOfMain                = "InvalidDeclarationOfMain"
	CodeIncompatibleArgumentType                = "IncompatibleArgumentType"
	CodeInvalidStringLiteral                    = "InvalidStringLiteral"
	CodeLiteralFloatOverflow                    = "LiteralFloatOverflow"
	CodeLiteralIntOverflow                      = "LiteralIntOverflow"
	CodeLiteralString                           = "LiteralString"
	CodeMismatchInNumberOfParameters            = "MismatchInNumberOfParameters"
	CodeTernaryExpressionResultIncompatible     = "TernaryExpressionResultIncompatible"
	CodeTernaryExpressionNotBoolean             = "TernaryExpressionNotBoolean"
	CodeUnableToAssignToConstant                = "UnableToAssignToConstant"
	CodeUnableToAssignIncompatibleTypes         = "UnableToAssignIncompatibleTypes"
	CodeUnableToAssignToFunction                = "UnableToAssignToFunction"
	CodeUnableToCallUnitFunctionAsValueFunction = "UnableToCallUnitFunctionAsValueFunction"
	CodeUnableToCallConstantAsFunction          = "UnableToCallConstantAsFunction"
	CodeUnableToCallVariableAsFunction          = "UnableToCallVariableAsFunction"
	CodeUnaryExpressionRequiresOperandType      = "UnaryExpressionRequiresOperandType"
	CodeUnableToReferenceFunction               = "UnableToReferenceFunction"
	CodeUnableToCallValueFunctionAsUnitFunction = "UnableToCallValueFunctionAsUnitFunction"
	CodeUnknownIdentifier                       = "UnknownIdentifier"
	CodeWhileGuardNotBoolean                    = "WhileGuardNotBoolean"
)
