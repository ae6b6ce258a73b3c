package directory

type manifestResult struct {
	hostPath string
	metadata map[string]interface{}
}

func (r *manifestResult) HostPath() string {
	return r.hostPath
}

func (r *manifestResult) Metadata() map[string]interface{} {
	return r.metadata
}
