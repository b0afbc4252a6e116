package format

type tfvarsAdapter struct {
	hclSource
}

func newTFVars() *tfvarsAdapter {
	return &tfvarsAdapter{hclSource{format: "HCL"}}
}
