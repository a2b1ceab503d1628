package badroute

//routedoc:get("/items/<id>")
func GetItem(name string) string {
	return name
}
