package inspector

import "os"

// BuildRequest assembles an inspection request from local inputs. It reads the
// whole file at filename and fails with *FileReadError before any network
// activity can happen. Info types keep their input order, duplicates included;
// the remote service owns interpretation of both the labels and the image bytes.
func BuildRequest(project, filename string, infoTypes []string, includeQuote bool) (*Request, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &FileReadError{Path: filename, Err: err}
	}

	types := make([]string, len(infoTypes))
	copy(types, infoTypes)

	return &Request{
		Project:      project,
		InfoTypes:    types,
		IncludeQuote: includeQuote,
		ImageBytes:   data,
	}, nil
}
