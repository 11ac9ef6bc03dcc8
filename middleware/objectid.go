package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/utils"
)

// CheckObjectID rejects requests whose {id} path variable is not a valid ObjectID
func CheckObjectID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := mux.Vars(r)["id"]
		if ok && !primitive.IsValidObjectID(id) {
			utils.RespondWithError(w, http.StatusNotFound, "Invalid ObjectId of: "+id)
			return
		}
		next.ServeHTTP(w, r)
	})
}
