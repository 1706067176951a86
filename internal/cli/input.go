package cli

import (
	"io"
	"os"

	"github.com/matzehuels/cratecat/pkg/errors"
)

// stdinArg selects standard input as the metadata source.
const stdinArg = "-"

// readInput reads the metadata document named by arg, or stdin for "-".
func readInput(arg string, stdin io.Reader) ([]byte, error) {
	if arg == stdinArg {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		return data, nil
	}
	if err := errors.ValidatePath(arg); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "metadata file %s", arg)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", arg)
	}
	return data, nil
}

// inputName is the display name of arg.
func inputName(arg string) string {
	if arg == stdinArg {
		return "stdin"
	}
	return arg
}
