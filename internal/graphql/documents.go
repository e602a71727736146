package graphql

// Operation documents sent to the todo service. The schema is the one a
// Hasura instance generates for a `todos` table.
const (
	listTodosQuery = `query MyQuery {
  todos {
    done
    id
    text
  }
}`

	addTodoMutation = `mutation addTodo($text: String!) {
  insert_todos(objects: { text: $text }) {
    returning {
      done
      id
      text
    }
  }
}`

	deleteTodoMutation = `mutation deleteTodo($id: uuid!) {
  delete_todos(where: { id: { _eq: $id } }) {
    returning {
      done
      id
      text
    }
  }
}`

	toggleTodoMutation = `mutation toggleTodo($id: uuid!, $done: Boolean!) {
  update_todos(where: { id: { _eq: $id } }, _set: { done: $done }) {
    returning {
      done
      id
      text
    }
  }
}`
)
