package application

import "github.com/oksasatya/edu-verify/pkg/helpers"

// CodeGenerator produces one-time verification codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// CodeGeneratorFunc adapts a function to CodeGenerator.
type CodeGeneratorFunc func() (string, error)

func (f CodeGeneratorFunc) Generate() (string, error) { return f() }

// DefaultCodeGenerator draws codes uniformly from [100000, 999999].
var DefaultCodeGenerator CodeGenerator = CodeGeneratorFunc(helpers.GenVerificationCode)
